// Package locale translates user-facing CLI text. Catalogs are embedded TOML
// files in the go-i18n format; missing messages fall back to English.
package locale

import (
	"embed"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var catalogs embed.FS

// Supported lists the languages with a catalog, default first.
var Supported = []string{"en", "ur"}

var loadBundle = sync.OnceValues(func() (*i18n.Bundle, error) {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, lang := range Supported {
		if _, err := b.LoadMessageFileFS(catalogs, "locales/active."+lang+".toml"); err != nil {
			return nil, fmt.Errorf("load %s catalog: %w", lang, err)
		}
	}
	return b, nil
})

// Translator localizes messages for one language.
type Translator struct {
	loc *i18n.Localizer
}

// New returns a translator for lang. Unknown languages fall back to English.
func New(lang string) (*Translator, error) {
	b, err := loadBundle()
	if err != nil {
		return nil, err
	}
	if lang == "" {
		lang = "en"
	}
	return &Translator{loc: i18n.NewLocalizer(b, lang)}, nil
}

// T translates id. The id itself is returned when no catalog has it.
func (t *Translator) T(id string) string {
	return t.localize(&i18n.LocalizeConfig{MessageID: id})
}

// TData translates id with template data.
func (t *Translator) TData(id string, data map[string]any) string {
	return t.localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
}

// TPlural translates id choosing the plural form for count. The template
// receives {{.Count}}.
func (t *Translator) TPlural(id string, count int) string {
	return t.localize(&i18n.LocalizeConfig{
		MessageID:    id,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

func (t *Translator) localize(lc *i18n.LocalizeConfig) string {
	// A fallback to English comes back as a message plus MessageNotFoundErr.
	msg, err := t.loc.Localize(lc)
	if msg == "" && err != nil {
		return lc.MessageID
	}
	return msg
}
