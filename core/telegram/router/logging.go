package router

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/finbot/core/logger"
	"github.com/m3rciful/finbot/core/netutil"
	tghelpers "github.com/m3rciful/finbot/core/telegram/helpers"
	"github.com/m3rciful/finbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// summary produces the single handler.handled line logged per routed update.
type summary struct {
	name   string
	start  time.Time
	extras []slog.Attr
}

func track(name string, extras ...slog.Attr) summary {
	return summary{name: handlerName(name), start: time.Now(), extras: extras}
}

// run invokes fn under the handler name and logs its result.
func (s summary) run(c tele.Context, fn tele.HandlerFunc) error {
	tghelpers.WithHandler(c, s.name)
	err := fn(c)
	status := "ok"
	if err != nil {
		status = "fail"
	}
	s.log(c, status, err)
	return err
}

// skip logs an update that no handler accepted.
func (s summary) skip(c tele.Context, reason string) {
	s.extras = append(s.extras, slog.String("reason", reason))
	s.log(c, "skip", nil)
}

func (s summary) log(c tele.Context, status string, err error) {
	ctx := tghelpers.WithHandler(c, s.name)
	msgs, kb := middleware.GetCounters(c)
	outcome := status
	if status == "skip" {
		outcome = "ok"
	}

	attrs := make([]slog.Attr, 0, 10+len(s.extras))
	attrs = append(attrs,
		slog.String("status", status),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", time.Since(s.start)),
	)
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(netutil.RedactError(err), 256)),
			slog.String("err_code", errorCode(err)),
			slog.String("err_kind", netutil.Classify(err)),
		)
	}
	attrs = append(attrs, s.extras...)

	if err != nil {
		logger.Warn(ctx, logger.CompTG, "handler.handled", attrs...)
		return
	}
	logger.Info(ctx, logger.CompTG, "handler.handled", attrs...)
}

// handlerName turns a command, alias or callback key into a log-friendly name.
func handlerName(raw string) string {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "/")
	if raw == "" {
		return "unknown"
	}
	return strings.ToLower(strings.Join(strings.Fields(raw), "_"))
}

// errorCode prefers a Code() method anywhere in the chain, then the concrete type name.
func errorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		if code := strings.TrimSpace(coded.Code()); code != "" {
			return strings.ToUpper(strings.Join(strings.Fields(code), "_"))
		}
	}
	name := fmt.Sprintf("%T", err)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimLeft(name, "*")
	if name == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(name)
}
