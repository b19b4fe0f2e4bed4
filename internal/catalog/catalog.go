// Package catalog holds the localized texts shown to users.
// Every lookup resolves an unset or unknown locale to Russian.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Locale identifies a display language.
type Locale string

const (
	// Unset marks a conversation that has not picked a language yet.
	Unset Locale = ""
	// RU is Russian, the fallback locale.
	RU Locale = "ru"
	// EN is English.
	EN Locale = "en"
	// KZ is Kazakh.
	KZ Locale = "kz"
)

// Default is the locale used whenever a locale is unset or unknown.
const Default = RU

// Locales lists supported locales in display order.
var Locales = []Locale{RU, EN, KZ}

// ParseLocale validates a locale code case-insensitively.
func ParseLocale(raw string) (Locale, bool) {
	loc := Locale(strings.ToLower(strings.TrimSpace(raw)))
	for _, l := range Locales {
		if l == loc {
			return l, true
		}
	}
	return Unset, false
}

// Resolve returns the locale itself when supported, otherwise Default.
func (l Locale) Resolve() Locale {
	if loc, ok := ParseLocale(string(l)); ok {
		return loc
	}
	return Default
}

// Key names a catalog entry.
type Key string

const (
	Welcome              Key = "welcome"
	Wait                 Key = "wait"
	ChooseLanguageStart  Key = "choose_language_start"
	ChooseLanguage       Key = "choose_language"
	ChooseCurrency       Key = "choose_currency"
	CurrencySet          Key = "currency_set"
	ButtonHome           Key = "button_home"
	ButtonPopular        Key = "button_popular"
	ButtonChangeLanguage Key = "button_change_language"
	ButtonChangeCurrency Key = "button_change_currency"
	PopularPrompt        Key = "popular_prompt"
	MenuHint             Key = "menu_hint"
	AnswerFailed         Key = "answer_failed"
	AnswerError          Key = "answer_error"
)

// Keys lists every key that each locale must define.
var Keys = []Key{
	Welcome, Wait, ChooseLanguageStart, ChooseLanguage, ChooseCurrency, CurrencySet,
	ButtonHome, ButtonPopular, ButtonChangeLanguage, ButtonChangeCurrency,
	PopularPrompt, MenuHint, AnswerFailed, AnswerError,
}

const placeholder = "{value}"

//go:embed locales/*.yaml
var embedded embed.FS

type localeFile struct {
	LanguageName string         `yaml:"language_name"`
	NativeName   string         `yaml:"native_name"`
	Messages     map[Key]string `yaml:"messages"`
	Popular      []string       `yaml:"popular"`
}

// Catalog is an immutable set of localized texts.
type Catalog struct {
	locales map[Locale]localeFile
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Builtin returns the catalog compiled into the binary.
// It panics if the embedded files are malformed.
func Builtin() *Catalog {
	defaultOnce.Do(func() {
		cat, err := Load(embedded, "locales")
		if err != nil {
			panic(err)
		}
		defaultCat = cat
	})
	return defaultCat
}

// Load reads <dir>/<locale>.yaml for every supported locale from fsys.
// Missing locale files are skipped; the fallback locale is mandatory.
func Load(fsys fs.FS, dir string) (*Catalog, error) {
	cat := &Catalog{locales: make(map[Locale]localeFile, len(Locales))}
	for _, loc := range Locales {
		data, err := fs.ReadFile(fsys, path.Join(dir, string(loc)+".yaml"))
		if err != nil {
			if loc == Default {
				return nil, fmt.Errorf("catalog: read %s: %w", loc, err)
			}
			continue
		}
		var f localeFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("catalog: parse %s: %w", loc, err)
		}
		cat.locales[loc] = f
	}
	return cat, nil
}

// Validate reports the first locale that misses a key or the popular question list.
func (c *Catalog) Validate() error {
	for _, loc := range Locales {
		f, ok := c.locales[loc]
		if !ok {
			return fmt.Errorf("catalog: locale %s is not defined", loc)
		}
		if strings.TrimSpace(f.LanguageName) == "" {
			return fmt.Errorf("catalog: locale %s has no language_name", loc)
		}
		if strings.TrimSpace(f.NativeName) == "" {
			return fmt.Errorf("catalog: locale %s has no native_name", loc)
		}
		for _, key := range Keys {
			if strings.TrimSpace(f.Messages[key]) == "" {
				return fmt.Errorf("catalog: locale %s misses key %s", loc, key)
			}
		}
		if len(f.Popular) == 0 {
			return fmt.Errorf("catalog: locale %s has no popular questions", loc)
		}
		if !strings.Contains(f.Messages[CurrencySet], placeholder) {
			return fmt.Errorf("catalog: locale %s key %s lacks %s", loc, CurrencySet, placeholder)
		}
	}
	return nil
}

func (c *Catalog) file(loc Locale) localeFile {
	if f, ok := c.locales[loc.Resolve()]; ok {
		return f
	}
	return c.locales[Default]
}

// Lookup returns the text for key in loc, falling back to Default for the
// locale and then for the key. A key absent from Default is a programming
// error and panics.
func (c *Catalog) Lookup(loc Locale, key Key) string {
	if text := c.file(loc).Messages[key]; text != "" {
		return text
	}
	text, ok := c.locales[Default].Messages[key]
	if !ok || text == "" {
		panic(fmt.Sprintf("catalog: key %q is not defined for %s", key, Default))
	}
	return text
}

// Format renders a parameterized entry.
func (c *Catalog) Format(loc Locale, key Key, value string) string {
	return strings.ReplaceAll(c.Lookup(loc, key), placeholder, value)
}

// Popular returns a copy of the locale's popular question list.
func (c *Catalog) Popular(loc Locale) []string {
	list := c.file(loc).Popular
	if len(list) == 0 {
		list = c.locales[Default].Popular
	}
	return append([]string(nil), list...)
}

// PopularAt returns the popular question at index i, if any.
func (c *Catalog) PopularAt(loc Locale, i int) (string, bool) {
	list := c.Popular(loc)
	if i < 0 || i >= len(list) {
		return "", false
	}
	return list[i], true
}

// LanguageName returns the English name of the locale's language.
func (c *Catalog) LanguageName(loc Locale) string {
	if name := c.file(loc).LanguageName; name != "" {
		return name
	}
	return c.locales[Default].LanguageName
}

// NativeName returns the language's own name, used on selection buttons.
func (c *Catalog) NativeName(loc Locale) string {
	if f, ok := c.locales[loc.Resolve()]; ok && f.NativeName != "" {
		return f.NativeName
	}
	return string(loc.Resolve())
}
