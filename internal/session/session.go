// Package session stores the per-conversation language and currency choice.
package session

import (
	"context"
	"strings"

	"github.com/m3rciful/finbot/internal/catalog"
)

// Currency is an ISO code the user can pick for monetary assumptions.
type Currency string

const (
	// CurrencyUnset marks a conversation that has not picked a currency yet.
	CurrencyUnset Currency = ""
	KZT           Currency = "KZT"
	USD           Currency = "USD"
	EUR           Currency = "EUR"
	RUB           Currency = "RUB"
)

// DefaultCurrency is assumed whenever the currency is unset.
const DefaultCurrency = KZT

// Currencies lists supported currencies in display order.
var Currencies = []Currency{KZT, USD, EUR, RUB}

var symbols = map[Currency]string{KZT: "₸", USD: "$", EUR: "€", RUB: "₽"}

// Label returns the code prefixed with its symbol, e.g. "₸ KZT".
func (c Currency) Label() string {
	if sym, ok := symbols[c]; ok {
		return sym + " " + string(c)
	}
	return string(c)
}

// ParseCurrency validates a currency code case-insensitively.
func ParseCurrency(raw string) (Currency, bool) {
	cur := Currency(strings.ToUpper(strings.TrimSpace(raw)))
	for _, c := range Currencies {
		if c == cur {
			return c, true
		}
	}
	return CurrencyUnset, false
}

// Session is the mutable state of one conversation.
type Session struct {
	Locale   catalog.Locale `json:"locale,omitempty" db:"locale"`
	Currency Currency       `json:"currency,omitempty" db:"currency"`
}

// EffectiveLocale returns the selected locale or the catalog default.
func (s Session) EffectiveLocale() catalog.Locale {
	return s.Locale.Resolve()
}

// EffectiveCurrency returns the selected currency or DefaultCurrency.
func (s Session) EffectiveCurrency() Currency {
	if cur, ok := ParseCurrency(string(s.Currency)); ok {
		return cur
	}
	return DefaultCurrency
}

// Store keeps sessions keyed by conversation id.
// Writes to one field never reset the other; the last write wins.
type Store interface {
	Get(ctx context.Context, conversationID int64) (Session, error)
	SetLocale(ctx context.Context, conversationID int64, loc catalog.Locale) error
	SetCurrency(ctx context.Context, conversationID int64, cur Currency) error
}
