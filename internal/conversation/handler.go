// Package conversation drives a chat through language and currency selection,
// menu navigation and question answering.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/finbot/core/logger"
	"github.com/m3rciful/finbot/internal/answer"
	"github.com/m3rciful/finbot/internal/catalog"
	"github.com/m3rciful/finbot/internal/menu"
	"github.com/m3rciful/finbot/internal/reply"
	"github.com/m3rciful/finbot/internal/session"
)

const component = logger.CompConversation

// Conversation is one chat as seen by the handler.
type Conversation interface {
	reply.Replier
	// ID is the stable identifier sessions are keyed by.
	ID() int64
	// Ack answers the pending callback query, if any.
	Ack(ctx context.Context) error
}

// Asker answers a free-form question in a conversation.
type Asker interface {
	Ask(ctx context.Context, r reply.Replier, question string, s session.Session) (answer.Outcome, error)
}

// Options configures a Handler.
type Options struct {
	Catalog *catalog.Catalog
	Store   session.Store
	Answers Asker
	// Currency enables currency selection.
	Currency bool
}

// Handler implements the start command, text and callback entry points.
// Conversation state lives entirely in the session store.
type Handler struct {
	cat     *catalog.Catalog
	store   session.Store
	answers Asker
	menu    menu.Options
}

// NewHandler validates opts.
func NewHandler(opts Options) (*Handler, error) {
	if opts.Store == nil {
		return nil, errors.New("conversation: session store is required")
	}
	if opts.Answers == nil {
		return nil, errors.New("conversation: answer service is required")
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Builtin()
	}
	return &Handler{
		cat:     cat,
		store:   opts.Store,
		answers: opts.Answers,
		menu:    menu.Options{Currency: opts.Currency},
	}, nil
}

// Start always re-issues the trilingual language prompt.
func (h *Handler) Start(ctx context.Context, c Conversation) error {
	sess, err := h.session(ctx, c)
	if err != nil {
		return err
	}
	h.trace(ctx, c, menu.Action{Kind: menu.ChangeLanguage}, sess)
	return c.Reply(ctx, reply.WithInline(
		h.cat.Lookup(sess.EffectiveLocale(), catalog.ChooseLanguageStart),
		h.languageRows()...,
	))
}

// Text handles a text message: menu labels of the active locale or a question.
func (h *Handler) Text(ctx context.Context, c Conversation, text string) error {
	sess, err := h.session(ctx, c)
	if err != nil {
		return err
	}
	action := menu.ClassifyText(h.cat, text, sess.EffectiveLocale(), h.menu)
	h.trace(ctx, c, action, sess)

	loc := sess.EffectiveLocale()
	switch action.Kind {
	case menu.ShowHome:
		return h.showHome(ctx, c, loc)
	case menu.ShowPopular:
		return h.showPopular(ctx, c, loc)
	case menu.ChangeLanguage:
		return c.Reply(ctx, reply.WithInline(h.cat.Lookup(loc, catalog.ChooseLanguage), h.languageRows()...))
	case menu.ChangeCurrency:
		return c.Reply(ctx, reply.WithInline(h.cat.Lookup(loc, catalog.ChooseCurrency), currencyRows()...))
	case menu.AskFreeform:
		if action.Text == "" {
			return nil
		}
		return h.ask(ctx, c, action.Text, sess)
	}
	return nil
}

// Callback handles an inline option. The callback is acknowledged exactly
// once before anything else; unknown tokens get only the acknowledgement.
func (h *Handler) Callback(ctx context.Context, c Conversation, token string) error {
	if err := c.Ack(ctx); err != nil {
		logger.Warn(ctx, component, "callback.ack_failed",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}

	action := menu.ParseCallback(token)
	if action.Kind == menu.None {
		logger.Debug(ctx, component, "callback.ignored",
			slog.String("status", "skip"),
			slog.String("cb_key", logger.SanitizeLimit(token, 64)),
		)
		return nil
	}

	switch action.Kind {
	case menu.SelectLanguage:
		if err := h.store.SetLocale(ctx, c.ID(), action.Locale); err != nil {
			return fmt.Errorf("conversation: set locale: %w", err)
		}
		sess, err := h.session(ctx, c)
		if err != nil {
			return err
		}
		h.trace(ctx, c, action, sess)
		loc := sess.EffectiveLocale()
		if err := c.Reply(ctx, reply.WithMenu(h.cat.Lookup(loc, catalog.Welcome), menu.Labels(h.cat, loc, h.menu))); err != nil {
			return err
		}
		if !h.menu.Currency {
			return nil
		}
		return c.Reply(ctx, reply.WithInline(h.cat.Lookup(loc, catalog.ChooseCurrency), currencyRows()...))

	case menu.SelectCurrency:
		if !h.menu.Currency {
			return nil
		}
		if err := h.store.SetCurrency(ctx, c.ID(), action.Currency); err != nil {
			return fmt.Errorf("conversation: set currency: %w", err)
		}
		sess, err := h.session(ctx, c)
		if err != nil {
			return err
		}
		h.trace(ctx, c, action, sess)
		loc := sess.EffectiveLocale()
		return c.Reply(ctx, reply.WithMenu(
			h.cat.Format(loc, catalog.CurrencySet, string(action.Currency)),
			menu.Labels(h.cat, loc, h.menu),
		))

	case menu.SelectPopularQuestion:
		sess, err := h.session(ctx, c)
		if err != nil {
			return err
		}
		question, ok := h.cat.PopularAt(sess.EffectiveLocale(), action.Index)
		if !ok {
			logger.Debug(ctx, component, "callback.ignored",
				slog.String("status", "skip"),
				slog.String("action", action.Kind.String()),
				slog.Int("index", action.Index),
			)
			return nil
		}
		h.trace(ctx, c, action, sess)
		return h.ask(ctx, c, question, sess)
	}
	return nil
}

func (h *Handler) session(ctx context.Context, c Conversation) (session.Session, error) {
	sess, err := h.store.Get(ctx, c.ID())
	if err != nil {
		return session.Session{}, fmt.Errorf("conversation: load session: %w", err)
	}
	return sess, nil
}

func (h *Handler) showHome(ctx context.Context, c Conversation, loc catalog.Locale) error {
	if err := c.Reply(ctx, reply.WithMenu(h.cat.Lookup(loc, catalog.Welcome), menu.Labels(h.cat, loc, h.menu))); err != nil {
		return err
	}
	return c.Reply(ctx, reply.Text(h.cat.Lookup(loc, catalog.MenuHint)))
}

func (h *Handler) showPopular(ctx context.Context, c Conversation, loc catalog.Locale) error {
	list := h.cat.Popular(loc)
	rows := make([][]reply.Button, 0, len(list))
	for i, q := range list {
		rows = append(rows, []reply.Button{{Text: q, Data: menu.PopularToken(i)}})
	}
	return c.Reply(ctx, reply.WithInline(h.cat.Lookup(loc, catalog.PopularPrompt), rows...))
}

func (h *Handler) ask(ctx context.Context, c Conversation, question string, sess session.Session) error {
	if !h.menu.Currency {
		sess.Currency = session.CurrencyUnset
	}
	_, err := h.answers.Ask(ctx, c, question, sess)
	return err
}

func (h *Handler) languageRows() [][]reply.Button {
	rows := make([][]reply.Button, 0, len(catalog.Locales))
	for _, loc := range catalog.Locales {
		rows = append(rows, []reply.Button{{Text: h.cat.NativeName(loc), Data: menu.LanguageToken(loc)}})
	}
	return rows
}

func currencyRows() [][]reply.Button {
	var rows [][]reply.Button
	for i := 0; i < len(session.Currencies); i += 2 {
		row := make([]reply.Button, 0, 2)
		for _, cur := range session.Currencies[i:min(i+2, len(session.Currencies))] {
			row = append(row, reply.Button{Text: cur.Label(), Data: menu.CurrencyToken(cur)})
		}
		rows = append(rows, row)
	}
	return rows
}

func (h *Handler) trace(ctx context.Context, c Conversation, action menu.Action, sess session.Session) {
	logger.Debug(ctx, component, "action",
		slog.String("status", "ok"),
		slog.String("action", action.Kind.String()),
		slog.Int64("conversation_id", c.ID()),
		slog.String("locale", string(sess.EffectiveLocale())),
		slog.String("currency", string(sess.EffectiveCurrency())),
	)
}
