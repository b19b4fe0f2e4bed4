// Package callbacks reads callback query data produced by inline buttons.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Token returns the callback token of cb. Buttons built with a unique
// endpoint yield "<unique>|<payload>"; raw data buttons yield their data.
func Token(cb *tele.Callback) string {
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		if cb.Data == "" {
			return cb.Unique
		}
		return cb.Unique + "|" + cb.Data
	}
	return strings.TrimSpace(strings.TrimPrefix(cb.Data, "\f"))
}

// Key returns the part of the token before the first '|'.
func Key(cb *tele.Callback) string {
	key, _, _ := strings.Cut(Token(cb), "|")
	return key
}

// ContextToken returns the callback token of the update carried by c.
func ContextToken(c tele.Context) string {
	if c == nil {
		return ""
	}
	return Token(c.Callback())
}
