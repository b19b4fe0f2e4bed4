package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/lumberjack"

	coreconfig "github.com/m3rciful/finbot/core/config"
)

type settings struct {
	format    logFormat
	keyOrder  []string
	level     slog.Level
	profile   string
	sampleNum int
	sampleDen int
	trace     bool
	stacks    bool
}

func resolveSettings(cfg *coreconfig.Config) settings {
	s := settings{
		format:    formatJSON,
		keyOrder:  append([]string(nil), defaultKeyOrder...),
		level:     slog.LevelInfo,
		profile:   "prod",
		sampleNum: 1,
		sampleDen: 50,
		trace:     truthy(os.Getenv("TRACE")) || truthy(os.Getenv("LOG_TRACE")),
	}
	if cfg == nil {
		return s
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		s.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		s.format = formatKV
	case "json":
	default:
		if s.profile == "debug" || s.profile == "dev" {
			s.format = formatKV
		}
	}

	if raw := strings.TrimSpace(lc.KeysOrder); raw != "" && raw != "default" {
		var order []string
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				order = append(order, k)
			}
		}
		if len(order) > 0 {
			s.keyOrder = order
		}
	}

	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		s.level = slog.LevelDebug
	case "warn", "warning":
		s.level = slog.LevelWarn
	case "error":
		s.level = slog.LevelError
	}

	s.stacks = truthy(lc.Stacks) || (lc.Stacks == "" && s.profile == "debug")

	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		s.sampleNum, s.sampleDen = parseRatio(spec)
	}
	return s
}

// parseRatio accepts "n/d" or "d" (meaning 1/d). "0" or "off" disables sampling.
// Unparsable specs keep the 1/50 default.
func parseRatio(spec string) (int, int) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if spec == "off" || spec == "0" {
		return 0, 0
	}
	if num, den, ok := strings.Cut(spec, "/"); ok {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 == nil && err2 == nil && n > 0 && d > 0 {
			return n, d
		}
		return 1, 50
	}
	if d, err := strconv.Atoi(spec); err == nil && d > 0 {
		return 1, d
	}
	return 1, 50
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// openSinks returns stdout plus, when a log dir is configured, a rotated bot
// file receiving every line and a rotated errors file receiving WARN and above.
func openSinks(cfg *coreconfig.Config) ([]sink, []io.Closer, error) {
	sinks := []sink{{w: os.Stdout, min: slog.LevelDebug}}
	if cfg == nil {
		return sinks, nil, nil
	}
	lc := cfg.Logging
	dir := strings.TrimSpace(lc.Dir)
	if dir == "" {
		return sinks, nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("logger: failed to create log dir %s: %v", dir, err)
		return sinks, nil, nil
	}

	var closers []io.Closer
	rotate := func(name string) *lumberjack.Logger {
		return &lumberjack.Logger{
			Filename:   filepath.Join(dir, name),
			MaxSize:    lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
			MaxAge:     lc.MaxAgeDays,
			Compress:   true,
		}
	}
	if name := strings.TrimSpace(lc.BotFile); name != "" {
		f := rotate(name)
		sinks = append(sinks, sink{w: f, min: slog.LevelDebug})
		closers = append(closers, f)
	}
	if name := strings.TrimSpace(lc.ErrorsFile); name != "" {
		f := rotate(name)
		sinks = append(sinks, sink{w: f, min: slog.LevelWarn})
		closers = append(closers, f)
	}
	return sinks, closers, nil
}
