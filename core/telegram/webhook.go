package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/finbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const (
	secretHeader   = "X-Telegram-Bot-Api-Secret-Token"
	maxUpdateBytes = 1 << 20
)

// UpdateProcessor runs one update to completion and reports handler failure.
type UpdateProcessor interface {
	Process(ctx context.Context, u tele.Update) error
}

// ProcessorFunc adapts a function to UpdateProcessor.
type ProcessorFunc func(ctx context.Context, u tele.Update) error

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, u tele.Update) error {
	return f(ctx, u)
}

// WebhookHandlerOptions configures NewWebhookHandler.
type WebhookHandlerOptions struct {
	// Path is where Telegram posts updates; empty means "/".
	Path string
	// SecretToken, when set, must match the secret header of every POST.
	SecretToken string
}

// NewWebhookHandler serves Telegram updates on POST and a liveness text on
// every other method of the same path. The response to a POST is written only
// after the update has been fully handled.
func NewWebhookHandler(proc UpdateProcessor, opts WebhookHandlerOptions) http.Handler {
	path := opts.Path
	if path == "" {
		path = "/"
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	// Handle registers every method; the POST route below takes precedence.
	r.Handle(path, http.HandlerFunc(liveness))
	r.Post(path, func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ctx := req.Context()

		if opts.SecretToken != "" {
			got := req.Header.Get(secretHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(opts.SecretToken)) != 1 {
				logger.Warn(ctx, logger.CompHTTP, "webhook.reject",
					slog.String("status", "fail"),
					slog.String("reason", "secret_mismatch"),
				)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		var upd tele.Update
		body := http.MaxBytesReader(w, req.Body, maxUpdateBytes)
		if err := json.NewDecoder(body).Decode(&upd); err != nil {
			logger.Warn(ctx, logger.CompHTTP, "webhook.decode",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		_, _ = io.Copy(io.Discard, body)

		err := proc.Process(ctx, upd)
		took := logger.RoundMS(time.Since(start)).Milliseconds()
		if err != nil {
			logger.Error(ctx, logger.CompHTTP, "webhook.update",
				slog.String("status", "fail"),
				slog.Int("update_id", upd.ID),
				slog.Int64("duration_ms", took),
				slog.String("err", err.Error()),
			)
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "Error")
			return
		}
		logger.Debug(ctx, logger.CompHTTP, "webhook.update",
			slog.String("status", "ok"),
			slog.Int("update_id", upd.ID),
			slog.Int64("duration_ms", took),
		)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "OK")
	})
	return r
}

func liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Bot is running")
}
