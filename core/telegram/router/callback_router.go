package router

import (
	"log/slog"

	tg "github.com/m3rciful/finbot/core/telegram"
	"github.com/m3rciful/finbot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute routes every callback query to the registry's callback handler.
// The handler owns acknowledging the query.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}

		key := callbacks.Key(cb)
		s := track("callback."+key, slog.String("cb_key", key))

		var h tele.HandlerFunc
		if reg != nil {
			h = reg.CallbackHandler()
		}
		if h == nil {
			_ = c.Respond()
			s.skip(c, "not_found")
			return nil
		}
		return s.run(c, h)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  handler,
	}
}
