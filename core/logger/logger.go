// Package logger provides the process-wide structured logger: a log/slog
// handler with a fixed key order, kv or JSON lines, and asynchronous fan-out
// to stdout and rotated files.
package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/finbot/core/buildinfo"
	coreconfig "github.com/m3rciful/finbot/core/config"
)

var (
	initOnce     sync.Once
	shutdownOnce sync.Once

	out     *asyncWriter
	closers []io.Closer

	levelVar      slog.LevelVar
	debugSampler  = newSampler(1, 50)
	traceOverride bool
	withStacks    bool

	// L is the base logger; nil until InitLogger succeeds.
	L *slog.Logger
)

// Component names used across the bot.
const (
	CompApp          = "app"
	CompDB           = "db"
	CompMigrate      = "db.migrate"
	CompTG           = "tg"
	CompTGWire       = "tg.wire"
	CompHTTP         = "http.webhook"
	CompSession      = "session"
	CompCompletion   = "completion"
	CompAnswer       = "service.answer"
	CompConversation = "conversation"
)

// InitLogger configures the global structured logger. Only the first call has effect.
func InitLogger(cfg *coreconfig.Config) error {
	var initErr error
	initOnce.Do(func() {
		s := resolveSettings(cfg)
		levelVar.Set(s.level)
		debugSampler.set(s.sampleNum, s.sampleDen)
		traceOverride = s.trace
		withStacks = s.stacks

		sinks, cl, err := openSinks(cfg)
		if err != nil {
			initErr = err
			return
		}
		closers = cl
		out = newAsyncWriter(sinks, 256)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   out,
			format:   s.format,
			keyOrder: s.keyOrder,
		}))
		slog.SetDefault(L)

		Info(context.Background(), CompApp, "startup",
			slog.String("go_version", runtime.Version()),
			slog.String("build", buildinfo.String()),
			slog.String("cfg_profile", s.profile),
			slog.String("level", s.level.String()),
		)
	})
	return initErr
}

// Shutdown drains queued lines and closes file sinks. Later calls are no-ops.
func Shutdown() error {
	var err error
	shutdownOnce.Do(func() {
		var errs []error
		if out != nil {
			errs = append(errs, out.Close())
		}
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
		err = errors.Join(errs...)
	})
	return err
}

// Background returns context.Background().
func Background() context.Context {
	return context.Background()
}

// Component returns the base logger scoped to name, or nil before InitLogger.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// LogEvent logs attrs under an explicit event name. A nil logg falls back to
// the context logger and then to L; with neither the call is dropped.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Event logs under component using the base logger, or the context logger
// when the base logger is not initialized.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	logg := Component(component)
	if logg == nil {
		logg = FromContext(ctx)
		if logg != nil && strings.TrimSpace(component) != "" {
			logg = logg.With("component", strings.TrimSpace(component))
		}
	}
	LogEvent(ctx, logg, level, event, attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a high-volume debug line should be emitted.
// TRACE=1 in the environment disables sampling.
func ShouldSampleDebug() bool {
	return traceOverride || debugSampler.allow()
}

// StacksEnabled reports whether panic logs should carry a stack trace.
func StacksEnabled() bool {
	return withStacks
}
