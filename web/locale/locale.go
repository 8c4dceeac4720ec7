// Package locale renders user-visible messages from the embedded TOML
// translation files.
package locale

import (
	"embed"
	"io/fs"
	"strings"
	"sync"

	"github.com/dboika/folio/logger"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed translation/*
var i18nFS embed.FS

var (
	i18nBundle   *i18n.Bundle
	LocalizerWeb *i18n.Localizer
	initOnce     sync.Once
	initErr      error
)

// InitLocalizer parses the bundled translations. The site is English only,
// so one localizer serves every request.
func InitLocalizer() error {
	initOnce.Do(func() {
		bundle := i18n.NewBundle(language.MustParse("en-US"))
		bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
		if initErr = parseTranslationFiles(i18nFS, bundle); initErr != nil {
			return
		}
		i18nBundle = bundle
		LocalizerWeb = i18n.NewLocalizer(i18nBundle, language.AmericanEnglish.String())
	})
	return initErr
}

// createTemplateData turns "key==value" params into template data.
func createTemplateData(params []string, seperator ...string) map[string]any {
	sep := "=="
	if len(seperator) > 0 {
		sep = seperator[0]
	}

	templateData := make(map[string]any)
	for _, param := range params {
		parts := strings.SplitN(param, sep, 2)
		if len(parts) != 2 {
			continue
		}
		templateData[parts[0]] = parts[1]
	}
	return templateData
}

// I18n localizes key. Params are "name==value" pairs. The key itself is
// returned when no translation exists.
func I18n(key string, params ...string) string {
	if err := InitLocalizer(); err != nil {
		logger.Error("i18n init failed:", err)
		return key
	}

	msg, err := LocalizerWeb.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
	if err != nil {
		logger.Warningf("Failed to localize message %q: %v", key, err)
		return key
	}
	return msg
}

func parseTranslationFiles(i18nFS fs.FS, i18nBundle *i18n.Bundle) error {
	return fs.WalkDir(i18nFS, "translation",
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			data, err := fs.ReadFile(i18nFS, path)
			if err != nil {
				return err
			}

			_, err = i18nBundle.ParseMessageFileBytes(data, path)
			return err
		})
}
