package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestToken(t *testing.T) {
	cases := []struct {
		name string
		cb   *tele.Callback
		want string
		key  string
	}{
		{"nil", nil, "", ""},
		{"raw", &tele.Callback{Data: "lang_kz"}, "lang_kz", "lang_kz"},
		{"raw with feed", &tele.Callback{Data: "\fpopular_3"}, "popular_3", "popular_3"},
		{"unique", &tele.Callback{Unique: "cur", Data: "USD"}, "cur|USD", "cur"},
		{"unique only", &tele.Callback{Unique: "home"}, "home", "home"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Token(tc.cb); got != tc.want {
				t.Fatalf("Token = %q, want %q", got, tc.want)
			}
			if got := Key(tc.cb); got != tc.key {
				t.Fatalf("Key = %q, want %q", got, tc.key)
			}
		})
	}
}
