// Package helpers bridges tele.Context and the context.Context used for logging.
package helpers

import (
	"context"

	"github.com/m3rciful/finbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// ctxKey is the tele.Context store key holding the derived context.Context.
const ctxKey = "finbot.ctx"

// StoreContext caches ctx on c so later helpers reuse it.
func StoreContext(c tele.Context, ctx context.Context) {
	if c != nil && ctx != nil {
		c.Set(ctxKey, ctx)
	}
}

func cached(c tele.Context) context.Context {
	if c == nil {
		return nil
	}
	ctx, _ := c.Get(ctxKey).(context.Context)
	return ctx
}

// ids returns the chat and user of the update. Updates without a chat, such
// as inline callbacks, use the sender as the chat.
func ids(c tele.Context) (chatID, userID int64) {
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	} else {
		chatID = userID
	}
	return chatID, userID
}

// BuildContext returns the logging context for the update in c, deriving and
// caching it on first use. The rid set by the logging middleware wins over a
// freshly built one.
func BuildContext(c tele.Context) context.Context {
	if ctx := cached(c); ctx != nil {
		return ctx
	}
	if c == nil {
		return context.Background()
	}

	updateID := c.Update().ID
	chatID, userID := ids(c)
	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
	}

	ctx := logger.WithUpdateMeta(logger.WithRID(context.Background(), rid), updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component(logger.CompTG))
	StoreContext(c, ctx)
	return ctx
}

// WithHandler tags the update's context with the serving handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" || logger.HandlerFrom(ctx) == handler {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}
