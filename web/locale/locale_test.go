package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestI18n(t *testing.T) {
	require.NoError(t, InitLocalizer())

	assert.Equal(t, "That email does not exist, please try again.", I18n("pages.login.noSuchEmail"))
	assert.Equal(t, "Password incorrect, please try again.", I18n("pages.login.wrongPassword"))
	assert.Equal(t, "You've already signed up with that email, log in instead!", I18n("pages.register.emailTaken"))
}

func TestI18nParams(t *testing.T) {
	assert.Equal(t, "Password must be at least 6 characters long.",
		I18n("validation.min", "Field==Password", "Param==6"))
	assert.Equal(t, "Copyright 2026", I18n("pages.footer.copyright", "Year==2026"))
}

func TestI18nMissingKey(t *testing.T) {
	assert.Equal(t, "pages.nope", I18n("pages.nope"))
}

func TestCreateTemplateData(t *testing.T) {
	data := createTemplateData([]string{"a==1", "b==x==y", "broken"})
	assert.Equal(t, map[string]any{"a": "1", "b": "x==y"}, data)
}
