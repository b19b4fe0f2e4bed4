package catalog

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestBuiltinValidates(t *testing.T) {
	if err := Builtin().Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLookupEveryKeyNonEmpty(t *testing.T) {
	cat := Builtin()
	for _, loc := range append([]Locale{Unset, "de"}, Locales...) {
		for _, key := range Keys {
			if got := cat.Lookup(loc, key); strings.TrimSpace(got) == "" {
				t.Fatalf("Lookup(%q, %s) is empty", loc, key)
			}
		}
	}
}

func TestUnsetAndUnknownResolveToRussian(t *testing.T) {
	cat := Builtin()
	for _, key := range Keys {
		want := cat.Lookup(RU, key)
		if got := cat.Lookup(Unset, key); got != want {
			t.Fatalf("Lookup(unset, %s) = %q, want %q", key, got, want)
		}
		if got := cat.Lookup("fr", key); got != want {
			t.Fatalf("Lookup(fr, %s) = %q, want %q", key, got, want)
		}
	}
	if got := cat.LanguageName(Unset); got != "Russian" {
		t.Fatalf("LanguageName(unset) = %q", got)
	}
}

func TestFormatCurrencySet(t *testing.T) {
	cat := Builtin()
	got := cat.Format(EN, CurrencySet, "USD")
	if got != "Currency set: USD. You can ask a question or use the menu below." {
		t.Fatalf("unexpected text: %q", got)
	}
	if strings.Contains(cat.Format(KZ, CurrencySet, "EUR"), placeholder) {
		t.Fatal("placeholder left unrendered")
	}
}

func TestPopularBounds(t *testing.T) {
	cat := Builtin()
	for _, loc := range Locales {
		list := cat.Popular(loc)
		if len(list) != 6 {
			t.Fatalf("locale %s has %d popular questions", loc, len(list))
		}
		if q, ok := cat.PopularAt(loc, 0); !ok || q != list[0] {
			t.Fatalf("PopularAt(%s, 0) = %q, %v", loc, q, ok)
		}
		if _, ok := cat.PopularAt(loc, len(list)); ok {
			t.Fatalf("PopularAt(%s, %d) should be out of range", loc, len(list))
		}
		if _, ok := cat.PopularAt(loc, -1); ok {
			t.Fatalf("PopularAt(%s, -1) should be out of range", loc)
		}
	}
}

func TestPopularReturnsCopy(t *testing.T) {
	cat := Builtin()
	list := cat.Popular(EN)
	list[0] = "mutated"
	if cat.Popular(EN)[0] == "mutated" {
		t.Fatal("Popular must not expose internal slice")
	}
}

func TestParseLocale(t *testing.T) {
	cases := map[string]Locale{"ru": RU, "EN": EN, " kz ": KZ}
	for raw, want := range cases {
		got, ok := ParseLocale(raw)
		if !ok || got != want {
			t.Fatalf("ParseLocale(%q) = %q, %v", raw, got, ok)
		}
	}
	if _, ok := ParseLocale("kk"); ok {
		t.Fatal("kk must be rejected")
	}
}

func TestLoadMissingLocaleFallsBack(t *testing.T) {
	fsys := fstest.MapFS{
		"l/ru.yaml": {Data: []byte("language_name: Russian\nmessages:\n  welcome: привет\npopular: [\"q\"]\n")},
	}
	cat, err := Load(fsys, "l")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cat.Lookup(KZ, Welcome); got != "привет" {
		t.Fatalf("Lookup(kz) = %q", got)
	}
	if err := cat.Validate(); err == nil {
		t.Fatal("expected validation error for incomplete catalog")
	}
}

func TestLookupMissingKeyPanics(t *testing.T) {
	fsys := fstest.MapFS{
		"l/ru.yaml": {Data: []byte("language_name: Russian\nmessages: {}\n")},
	}
	cat, err := Load(fsys, "l")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	cat.Lookup(EN, Welcome)
}

func TestLoadRequiresFallbackLocale(t *testing.T) {
	if _, err := Load(fstest.MapFS{}, "l"); err == nil {
		t.Fatal("expected error without ru.yaml")
	}
}

func TestNativeNames(t *testing.T) {
	cat := Builtin()
	want := map[Locale]string{RU: "Русский", EN: "English", KZ: "Қазақша"}
	for loc, name := range want {
		if got := cat.NativeName(loc); got != name {
			t.Fatalf("NativeName(%s) = %q, want %q", loc, got, name)
		}
	}
}
