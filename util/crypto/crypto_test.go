package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordAsBcrypt(t *testing.T) {
	h1, err := HashPasswordAsBcrypt("secret1")
	require.NoError(t, err)
	h2, err := HashPasswordAsBcrypt("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", h1)
	assert.NotEqual(t, h1, h2, "each hash should carry its own salt")

	cost, err := bcrypt.Cost([]byte(h1))
	require.NoError(t, err)
	assert.Equal(t, Cost, cost)
}

func TestCheckPasswordHash(t *testing.T) {
	hash, err := HashPasswordAsBcrypt("secret1")
	require.NoError(t, err)

	assert.NoError(t, CheckPasswordHash(hash, "secret1"))
	assert.ErrorIs(t, CheckPasswordHash(hash, "secret2"), ErrMismatchedPassword)

	err = CheckPasswordHash("not-a-hash", "secret1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMismatchedPassword)
}
