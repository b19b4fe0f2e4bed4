package helpers

import (
	"testing"

	"github.com/m3rciful/finbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

type stub struct {
	tele.Context
	chat  *tele.Chat
	user  *tele.User
	store map[string]interface{}
}

func (s *stub) Update() tele.Update         { return tele.Update{ID: 7} }
func (s *stub) Chat() *tele.Chat            { return s.chat }
func (s *stub) Sender() *tele.User          { return s.user }
func (s *stub) Get(k string) interface{}    { return s.store[k] }
func (s *stub) Set(k string, v interface{}) { s.store[k] = v }

func TestBuildContextCachesAndUsesMiddlewareRID(t *testing.T) {
	c := &stub{chat: &tele.Chat{ID: 1}, user: &tele.User{ID: 2}, store: map[string]interface{}{"rid": "abc"}}
	ctx := BuildContext(c)
	if logger.RIDFrom(ctx) != "abc" {
		t.Fatalf("rid = %q", logger.RIDFrom(ctx))
	}
	if BuildContext(c) != ctx {
		t.Fatal("context not cached")
	}
}

func TestBuildContextFallsBackToSenderChat(t *testing.T) {
	c := &stub{user: &tele.User{ID: 5}, store: map[string]interface{}{}}
	ctx := BuildContext(c)
	if got := logger.RIDFrom(ctx); got != logger.BuildRID(7, 5, 5) {
		t.Fatalf("rid = %q", got)
	}
}

func TestWithHandlerUpdatesCache(t *testing.T) {
	c := &stub{chat: &tele.Chat{ID: 1}, store: map[string]interface{}{}}
	WithHandler(c, "start")
	if got := logger.HandlerFrom(BuildContext(c)); got != "start" {
		t.Fatalf("handler = %q", got)
	}
	if BuildContext(nil) == nil {
		t.Fatal("nil tele context must still yield a context")
	}
}
