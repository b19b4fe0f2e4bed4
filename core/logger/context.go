package logger

import (
	"context"
	"log/slog"
)

type scopeKey struct{}

// scope is the per-request logging state carried in a context.
type scope struct {
	logger   *slog.Logger
	rid      string
	handler  string
	updateID int
	userID   int64
	chatID   int64
}

func scopeOf(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func withScope(ctx context.Context, mutate func(*scope)) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	s := scopeOf(ctx)
	mutate(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithLogger stores log in ctx; a nil log leaves ctx unchanged.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if log == nil {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return withScope(ctx, func(s *scope) { s.logger = log })
}

// FromContext returns the logger stored in ctx, or L.
func FromContext(ctx context.Context) *slog.Logger {
	if l := scopeOf(ctx).logger; l != nil {
		return l
	}
	return L
}

// WithRID attaches the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	if rid == "" {
		return withScope(ctx, func(*scope) {})
	}
	return withScope(ctx, func(s *scope) { s.rid = rid })
}

// RIDFrom returns the request correlation id, if any.
func RIDFrom(ctx context.Context) string {
	return scopeOf(ctx).rid
}

// WithUpdateMeta attaches the Telegram update, user and chat ids.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return withScope(ctx, func(s *scope) {
		s.updateID, s.userID, s.chatID = updateID, userID, chatID
	})
}

// WithHandler records which handler is serving the request.
func WithHandler(ctx context.Context, handler string) context.Context {
	return withScope(ctx, func(s *scope) { s.handler = handler })
}

// HandlerFrom returns the handler name recorded by WithHandler.
func HandlerFrom(ctx context.Context) string {
	return scopeOf(ctx).handler
}

// fields lists the non-zero scope values keyed by their log field names.
func (s scope) fields() map[string]any {
	out := make(map[string]any, 5)
	if s.rid != "" {
		out["rid"] = s.rid
	}
	if s.updateID != 0 {
		out["update_id"] = int64(s.updateID)
	}
	if s.userID != 0 {
		out["user_id"] = s.userID
	}
	if s.chatID != 0 {
		out["chat_id"] = s.chatID
	}
	if s.handler != "" {
		out["handler"] = s.handler
	}
	return out
}
