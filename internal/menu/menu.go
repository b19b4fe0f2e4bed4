// Package menu classifies inbound text and callback tokens into actions.
package menu

import (
	"strconv"
	"strings"

	"github.com/m3rciful/finbot/internal/catalog"
	"github.com/m3rciful/finbot/internal/session"
)

// Kind enumerates the actions a conversation can take.
type Kind int

const (
	// None means the input is not actionable and must be ignored.
	None Kind = iota
	ShowHome
	ShowPopular
	ChangeLanguage
	ChangeCurrency
	AskFreeform
	SelectLanguage
	SelectCurrency
	SelectPopularQuestion
)

var kindNames = map[Kind]string{
	None:                  "none",
	ShowHome:              "show_home",
	ShowPopular:           "show_popular",
	ChangeLanguage:        "change_language",
	ChangeCurrency:        "change_currency",
	AskFreeform:           "ask_freeform",
	SelectLanguage:        "select_language",
	SelectCurrency:        "select_currency",
	SelectPopularQuestion: "select_popular_question",
}

// String returns the snake_case name used in logs.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Action is a classified input. Only the field matching Kind is set.
type Action struct {
	Kind     Kind
	Locale   catalog.Locale
	Currency session.Currency
	Index    int
	Text     string
}

const (
	languagePrefix = "lang_"
	currencyPrefix = "cur_"
	popularPrefix  = "faq_"
)

// LanguageToken builds the callback token selecting loc.
func LanguageToken(loc catalog.Locale) string {
	return languagePrefix + string(loc)
}

// CurrencyToken builds the callback token selecting cur.
func CurrencyToken(cur session.Currency) string {
	return currencyPrefix + strings.ToLower(string(cur))
}

// PopularToken builds the callback token selecting the i-th popular question.
func PopularToken(i int) string {
	return popularPrefix + strconv.Itoa(i)
}

// ParseCallback validates a callback token. Anything outside the closed
// token set yields an Action of Kind None.
func ParseCallback(token string) Action {
	raw := strings.TrimSpace(token)
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, languagePrefix):
		if loc, ok := catalog.ParseLocale(lower[len(languagePrefix):]); ok {
			return Action{Kind: SelectLanguage, Locale: loc}
		}
	case strings.HasPrefix(lower, currencyPrefix):
		code := lower[len(currencyPrefix):]
		if len(code) != 3 {
			break
		}
		if cur, ok := session.ParseCurrency(code); ok {
			return Action{Kind: SelectCurrency, Currency: cur}
		}
	case strings.HasPrefix(lower, popularPrefix):
		if i, ok := parseIndex(lower[len(popularPrefix):]); ok {
			return Action{Kind: SelectPopularQuestion, Index: i}
		}
	}
	return Action{Kind: None}
}

// parseIndex accepts ASCII digits only, so signs and spaces are rejected.
func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Options toggles optional menu entries.
type Options struct {
	Currency bool
}

// Labels returns the main menu rows for the locale.
func Labels(cat *catalog.Catalog, loc catalog.Locale, opts Options) [][]string {
	second := []string{cat.Lookup(loc, catalog.ButtonChangeLanguage)}
	if opts.Currency {
		second = append(second, cat.Lookup(loc, catalog.ButtonChangeCurrency))
	}
	return [][]string{
		{cat.Lookup(loc, catalog.ButtonHome), cat.Lookup(loc, catalog.ButtonPopular)},
		second,
	}
}

// ClassifyText matches trimmed text against the active locale's menu labels.
// Labels of other locales are not recognized and fall through to AskFreeform.
func ClassifyText(cat *catalog.Catalog, text string, active catalog.Locale, opts Options) Action {
	trimmed := strings.TrimSpace(text)
	loc := active.Resolve()
	switch trimmed {
	case cat.Lookup(loc, catalog.ButtonHome):
		return Action{Kind: ShowHome}
	case cat.Lookup(loc, catalog.ButtonPopular):
		return Action{Kind: ShowPopular}
	case cat.Lookup(loc, catalog.ButtonChangeLanguage):
		return Action{Kind: ChangeLanguage}
	}
	if opts.Currency && trimmed == cat.Lookup(loc, catalog.ButtonChangeCurrency) {
		return Action{Kind: ChangeCurrency}
	}
	return Action{Kind: AskFreeform, Text: trimmed}
}
