package router

import (
	"errors"
	"fmt"
	"testing"

	tg "github.com/m3rciful/finbot/core/telegram"
	"github.com/m3rciful/finbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

type stubContext struct {
	tele.Context
	upd   tele.Update
	store map[string]interface{}
	acks  int
}

func newStub(upd tele.Update) *stubContext {
	return &stubContext{upd: upd, store: map[string]interface{}{}}
}

func (s *stubContext) Update() tele.Update { return s.upd }
func (s *stubContext) Chat() *tele.Chat    { return &tele.Chat{ID: 10} }
func (s *stubContext) Sender() *tele.User  { return &tele.User{ID: 20} }
func (s *stubContext) Callback() *tele.Callback {
	return s.upd.Callback
}
func (s *stubContext) Text() string {
	if s.upd.Message == nil {
		return ""
	}
	return s.upd.Message.Text
}
func (s *stubContext) Get(k string) interface{}    { return s.store[k] }
func (s *stubContext) Set(k string, v interface{}) { s.store[k] = v }
func (s *stubContext) Respond(...*tele.CallbackResponse) error {
	s.acks++
	return nil
}

func textUpdate(text string) tele.Update {
	return tele.Update{ID: 1, Message: &tele.Message{Text: text}}
}

func TestTextRouteRunsSlashCommand(t *testing.T) {
	reg := tg.NewRegistry()
	var ran, fallback int
	reg.RegisterCommand("/start", commands.Command{
		Description: "start",
		Aliases:     []string{"begin"},
		Handler:     func(tele.Context) error { ran++; return nil },
	})
	reg.SetTextFallback(func(tele.Context) error { fallback++; return nil })

	h := TextRoutes(reg, TextOptions{})[0].Handler
	for _, text := range []string{"/start", "/begin"} {
		if err := h(newStub(textUpdate(text))); err != nil {
			t.Fatalf("%s: %v", text, err)
		}
	}
	if ran != 2 || fallback != 0 {
		t.Fatalf("ran=%d fallback=%d", ran, fallback)
	}

	if err := h(newStub(textUpdate("/budget please"))); err != nil {
		t.Fatalf("unknown slash: %v", err)
	}
	if err := h(newStub(textUpdate("how do I save?"))); err != nil {
		t.Fatalf("free text: %v", err)
	}
	if fallback != 2 {
		t.Fatalf("fallback ran %d times, want 2", fallback)
	}
}

func TestTextRouteUnknownTextAndErrors(t *testing.T) {
	boom := errors.New("boom")
	h := TextRoutes(nil, TextOptions{UnknownText: func(tele.Context) error { return boom }})[0].Handler
	if err := h(newStub(textUpdate("hi"))); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if err := TextRoutes(nil, TextOptions{})[0].Handler(newStub(textUpdate("hi"))); err != nil {
		t.Fatalf("no handler should skip quietly: %v", err)
	}
}

func TestCallbackRouteDelegatesAck(t *testing.T) {
	reg := tg.NewRegistry()
	var got string
	reg.SetCallbackHandler(func(c tele.Context) error {
		got = c.Callback().Data
		return nil
	})
	c := newStub(tele.Update{ID: 2, Callback: &tele.Callback{Data: "lang|en"}})
	if err := CallbackRoute(reg).Handler(c); err != nil {
		t.Fatalf("callback: %v", err)
	}
	if got != "lang|en" || c.acks != 0 {
		t.Fatalf("data=%q acks=%d", got, c.acks)
	}
}

func TestCallbackRouteWithoutHandlerAcks(t *testing.T) {
	c := newStub(tele.Update{ID: 3, Callback: &tele.Callback{Data: "x"}})
	if err := CallbackRoute(tg.NewRegistry()).Handler(c); err != nil {
		t.Fatalf("callback: %v", err)
	}
	if c.acks != 1 {
		t.Fatalf("acks = %d, want 1", c.acks)
	}
}

func TestCommandRoutesIncludeAliases(t *testing.T) {
	reg := tg.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Description: "start",
		Aliases:     []string{"go", "/menu"},
		Handler:     func(tele.Context) error { return nil },
	})
	routes := CommandRoutes(reg)
	seen := map[interface{}]bool{}
	for _, r := range routes {
		seen[r.Endpoint] = true
	}
	for _, ep := range []string{"/start", "/go", "/menu"} {
		if !seen[ep] {
			t.Fatalf("missing route %s in %v", ep, seen)
		}
	}
}

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "rate limited" }

type plainErr struct{}

func (*plainErr) Error() string { return "plain" }

func TestErrorCode(t *testing.T) {
	if got := errorCode(fmt.Errorf("wrap: %w", codedErr{})); got != "RATE_LIMITED" {
		t.Fatalf("coded = %q", got)
	}
	if got := errorCode(&plainErr{}); got != "PLAINERR" {
		t.Fatalf("typed = %q", got)
	}
}

func TestHandlerName(t *testing.T) {
	cases := map[string]string{
		"/Start":        "start",
		"":              "unknown",
		"callback.lang": "callback.lang",
		" a  b ":        "a_b",
	}
	for in, want := range cases {
		if got := handlerName(in); got != want {
			t.Fatalf("handlerName(%q) = %q, want %q", in, got, want)
		}
	}
}
