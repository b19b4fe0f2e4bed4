package menu

import (
	"testing"

	"github.com/m3rciful/finbot/internal/catalog"
	"github.com/m3rciful/finbot/internal/session"
)

func TestParseCallbackLanguage(t *testing.T) {
	for _, loc := range catalog.Locales {
		a := ParseCallback(LanguageToken(loc))
		if a.Kind != SelectLanguage || a.Locale != loc {
			t.Fatalf("ParseCallback(%q) = %+v", LanguageToken(loc), a)
		}
	}
	if a := ParseCallback("LANG_EN"); a.Kind != SelectLanguage || a.Locale != catalog.EN {
		t.Fatalf("case-insensitive token not accepted: %+v", a)
	}
}

func TestParseCallbackCurrency(t *testing.T) {
	for _, cur := range session.Currencies {
		a := ParseCallback(CurrencyToken(cur))
		if a.Kind != SelectCurrency || a.Currency != cur {
			t.Fatalf("ParseCallback(%q) = %+v", CurrencyToken(cur), a)
		}
	}
	if got := CurrencyToken(session.USD); got != "cur_usd" {
		t.Fatalf("CurrencyToken(USD) = %q", got)
	}
}

func TestParseCallbackPopular(t *testing.T) {
	a := ParseCallback("faq_3")
	if a.Kind != SelectPopularQuestion || a.Index != 3 {
		t.Fatalf("ParseCallback(faq_3) = %+v", a)
	}
	if a := ParseCallback(PopularToken(42)); a.Index != 42 {
		t.Fatalf("PopularToken round trip: %+v", a)
	}
}

func TestParseCallbackRejectsUnknown(t *testing.T) {
	for _, token := range []string{
		"", "lang_de", "lang_", "cur_gbp", "cur_usdt", "faq_", "faq_-1", "faq_+1", "faq_1a",
		"faq_99999999999999999999", "print_menu", "\f-lang_en|x",
	} {
		if a := ParseCallback(token); a.Kind != None {
			t.Fatalf("ParseCallback(%q) = %+v, want None", token, a)
		}
	}
}

func TestClassifyTextMatchesActiveLocaleLabels(t *testing.T) {
	cat := catalog.Builtin()
	opts := Options{Currency: true}
	cases := []struct {
		key  catalog.Key
		kind Kind
	}{
		{catalog.ButtonHome, ShowHome},
		{catalog.ButtonPopular, ShowPopular},
		{catalog.ButtonChangeLanguage, ChangeLanguage},
		{catalog.ButtonChangeCurrency, ChangeCurrency},
	}
	for _, loc := range catalog.Locales {
		for _, tc := range cases {
			label := cat.Lookup(loc, tc.key)
			if a := ClassifyText(cat, " "+label+" ", loc, opts); a.Kind != tc.kind {
				t.Fatalf("ClassifyText(%q, %s) = %s, want %s", label, loc, a.Kind, tc.kind)
			}
		}
	}
}

func TestClassifyTextIsLocaleScoped(t *testing.T) {
	cat := catalog.Builtin()
	home := cat.Lookup(catalog.EN, catalog.ButtonHome)
	a := ClassifyText(cat, home, catalog.RU, Options{Currency: true})
	if a.Kind != AskFreeform || a.Text != home {
		t.Fatalf("english label in ru session: %+v", a)
	}
	// Unset locale behaves as ru.
	ru := cat.Lookup(catalog.RU, catalog.ButtonPopular)
	if a := ClassifyText(cat, ru, catalog.Unset, Options{}); a.Kind != ShowPopular {
		t.Fatalf("ru label with unset locale: %+v", a)
	}
}

func TestClassifyTextCurrencyDisabled(t *testing.T) {
	cat := catalog.Builtin()
	label := cat.Lookup(catalog.EN, catalog.ButtonChangeCurrency)
	if a := ClassifyText(cat, label, catalog.EN, Options{}); a.Kind != AskFreeform {
		t.Fatalf("currency label with feature off: %+v", a)
	}
	rows := Labels(cat, catalog.EN, Options{})
	if len(rows[1]) != 1 {
		t.Fatalf("menu rows with feature off: %v", rows)
	}
}

func TestClassifyTextFreeformTrimmed(t *testing.T) {
	cat := catalog.Builtin()
	a := ClassifyText(cat, "  What is an ETF?\n", catalog.EN, Options{})
	if a.Kind != AskFreeform || a.Text != "What is an ETF?" {
		t.Fatalf("freeform: %+v", a)
	}
}

func TestKindString(t *testing.T) {
	if SelectPopularQuestion.String() != "select_popular_question" {
		t.Fatalf("unexpected name %q", SelectPopularQuestion.String())
	}
	if Kind(99).String() != "kind(99)" {
		t.Fatalf("unexpected name %q", Kind(99).String())
	}
}
