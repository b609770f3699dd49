// Package i18n translates user-facing messages. Catalogues are embedded
// TOML files, one per language.
package i18n

import (
	"embed"
	"os"
	"path"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"azote/internal/logging"
)

//go:embed locales/*.toml
var locales embed.FS

// Translator renders messages in one language, falling back to English.
type Translator struct {
	lang      string
	localizer *i18n.Localizer
}

func newBundle() *i18n.Bundle {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	entries, err := locales.ReadDir("locales")
	if err != nil {
		logging.Error("Reading embedded locales: %v", err)
		return bundle
	}
	for _, e := range entries {
		if _, err := bundle.LoadMessageFileFS(locales, path.Join("locales", e.Name())); err != nil {
			logging.Error("Loading %s: %v", e.Name(), err)
		}
	}
	return bundle
}

// Languages lists the available catalogues as base language codes.
func Languages() []string {
	var out []string
	for _, tag := range newBundle().LanguageTags() {
		base, _ := tag.Base()
		out = append(out, base.String())
	}
	return out
}

// FromEnv turns $LANG (e.g. "pl_PL.UTF-8") into a language tag string.
func FromEnv() string {
	lang := os.Getenv("LANG")
	if i := strings.IndexAny(lang, ".@"); i >= 0 {
		lang = lang[:i]
	}
	return strings.ReplaceAll(lang, "_", "-")
}

// New returns a translator for lang, or for $LANG when lang is empty.
// Unknown languages get English.
func New(lang string) *Translator {
	if lang == "" {
		lang = FromEnv()
	}
	bundle := newBundle()
	matcher := language.NewMatcher(bundle.LanguageTags())
	tag, _, _ := matcher.Match(language.Make(lang))
	base, _ := tag.Base()
	return &Translator{
		lang:      base.String(),
		localizer: i18n.NewLocalizer(bundle, base.String(), language.English.String()),
	}
}

// Lang is the base code of the language in use.
func (t *Translator) Lang() string { return t.lang }

// T renders message id with data. Unknown ids are returned as is.
func (t *Translator) T(id string, data map[string]any) string {
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		logging.Debug("No translation for %q: %v", id, err)
		return id
	}
	return msg
}
