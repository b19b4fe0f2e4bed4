// Package prompt renders the instruction sent to the completion API.
package prompt

import (
	"strings"

	"github.com/m3rciful/finbot/internal/catalog"
	"github.com/m3rciful/finbot/internal/session"
)

const countryContext = "Kazakhstan"

// DefaultSystem is the system message sent alongside every prompt.
const DefaultSystem = "You are a helpful financial assistant focused on Kazakhstan. Provide accurate, practical, and safe advice."

// Builder renders prompts using the catalog's language names.
type Builder struct {
	cat *catalog.Catalog
}

// NewBuilder returns a Builder; a nil catalog selects the builtin one.
func NewBuilder(cat *catalog.Catalog) *Builder {
	if cat == nil {
		cat = catalog.Builtin()
	}
	return &Builder{cat: cat}
}

// Build renders question with the effective locale and currency of the
// conversation. It performs no validation of question.
func (b *Builder) Build(question string, loc catalog.Locale, cur session.Currency) string {
	language := b.cat.LanguageName(loc)
	currency := session.Session{Currency: cur}.EffectiveCurrency()

	var sb strings.Builder
	sb.WriteString("You are a professional financial literacy assistant focused on " + countryContext + ". ")
	sb.WriteString("Primary language for responses: " + language + ". ")
	sb.WriteString("If user asks in another language, still respond in " + language + ". ")
	sb.WriteString("Assume prices, salaries, taxes, and rates are in " + string(currency) + " unless the user specifies otherwise. ")
	sb.WriteString("Prioritize relevance to " + countryContext + ": banks (e.g., Halyk Bank, Kaspi, Jusan, Freedom), KASE, NBK/ARDFM regulations, cards, deposits, loans, transfers, taxes (IPN, OPV, SO), and local fintech. ")
	sb.WriteString("If a question is not about finance/economics/investing/budgeting, politely refuse in " + language + " saying you only answer finance-related questions. ")
	sb.WriteString("If the answer depends on the latest events or rates, clearly mention date assumptions and suggest checking official sources (NBK, KASE, banks). ")
	sb.WriteString("Be concise, structured, and practical. Use bullet points when helpful. ")
	sb.WriteString("User question: " + question)
	return sb.String()
}

// Build renders a prompt with the builtin catalog.
func Build(question string, loc catalog.Locale, cur session.Currency) string {
	return NewBuilder(nil).Build(question, loc, cur)
}
