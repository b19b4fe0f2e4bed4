package router

import (
	tg "github.com/m3rciful/finbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoutes builds the handler for text that did not hit a command endpoint.
// Text naming a command or alias still runs that command; anything else goes
// to the registry's text fallback.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		text := c.Text()

		if reg != nil && len(text) > 1 && text[0] == '/' {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				return track(key).run(c, cmd.Handler)
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return track("fallback").run(c, fb)
			}
		}

		if opts.UnknownText != nil {
			return track("unknown_text").run(c, opts.UnknownText)
		}

		track("unknown_text").skip(c, "no_fallback")
		return nil
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: handler},
	}
}
