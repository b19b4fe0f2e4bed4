package app

import (
	"context"

	"github.com/m3rciful/finbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/finbot/core/telegram/helpers"
	"github.com/m3rciful/finbot/core/telegram/keyboard"
	"github.com/m3rciful/finbot/internal/reply"

	tele "gopkg.in/telebot.v4"
)

// chat adapts a telebot update context to conversation.Conversation.
type chat struct {
	c tele.Context
}

// ID is the chat id, or the sender id for updates without a chat.
func (t chat) ID() int64 {
	if ch := t.c.Chat(); ch != nil {
		return ch.ID
	}
	if u := t.c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

func (t chat) Reply(_ context.Context, msg reply.Message) error {
	if m := toMarkup(msg.Keyboard); m != nil {
		return t.c.Send(msg.Text, m)
	}
	return t.c.Send(msg.Text)
}

func (t chat) Ack(_ context.Context) error {
	if t.c.Callback() == nil {
		return nil
	}
	return t.c.Respond()
}

func toMarkup(kb *reply.Keyboard) *tele.ReplyMarkup {
	if kb == nil {
		return nil
	}
	if len(kb.Inline) > 0 {
		rows := make([][]keyboard.InlineBtn, 0, len(kb.Inline))
		for _, row := range kb.Inline {
			r := make([]keyboard.InlineBtn, 0, len(row))
			for _, b := range row {
				r = append(r, keyboard.InlineBtn{Text: b.Text, Data: b.Data})
			}
			rows = append(rows, r)
		}
		return keyboard.InlineButtonsRows(rows...)
	}
	if len(kb.Menu) > 0 {
		return keyboard.ReplyButtons(kb.Menu...)
	}
	return nil
}

func (a *App) onStart(c tele.Context) error {
	return a.handler.Start(tghelpers.BuildContext(c), chat{c: c})
}

func (a *App) onText(c tele.Context) error {
	return a.handler.Text(tghelpers.BuildContext(c), chat{c: c}, c.Text())
}

func (a *App) onCallback(c tele.Context) error {
	return a.handler.Callback(tghelpers.BuildContext(c), chat{c: c}, callbacks.ContextToken(c))
}
