package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/finbot/core/config"
	"github.com/m3rciful/finbot/core/logger"
	"github.com/m3rciful/finbot/core/netutil"

	tele "gopkg.in/telebot.v4"
)

const (
	handlerErrKey   = "handler_err"
	shutdownTimeout = 5 * time.Second
)

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	Middlewares []Middleware
	Routes      []Route

	// Client overrides the HTTP client used for Bot API calls.
	Client *http.Client
	// DisableWebhookCleanup keeps a registered webhook when starting in longpoll mode.
	DisableWebhookCleanup bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Bot      *tele.Bot
	Registry *Registry
}

// NewSettings returns bot settings that run handlers synchronously and
// record the handler error on the update's context.
func NewSettings(token string, poller tele.Poller, client *http.Client) tele.Settings {
	return tele.Settings{
		Token:       token,
		Poller:      poller,
		Client:      client,
		Synchronous: true,
		OnError: func(err error, c tele.Context) {
			if c == nil {
				logger.Error(context.Background(), logger.CompTG, "handler.error",
					slog.String("status", "fail"),
					slog.String("err", netutil.Redact(err.Error())),
				)
				return
			}
			c.Set(handlerErrKey, err)
		},
	}
}

// BotProcessor feeds webhook updates through the bot's handler chain.
type BotProcessor struct {
	Bot *tele.Bot
}

// Process handles u synchronously and returns the error of its handler, if any.
func (p BotProcessor) Process(_ context.Context, u tele.Update) error {
	c := p.Bot.NewContext(u)
	p.Bot.ProcessContext(c)
	if err, ok := c.Get(handlerErrKey).(error); ok && err != nil {
		return err
	}
	return nil
}

// RunTelegram composes and runs a Telegram bot until the provided context is done.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}

	cfg := opts.Config
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	client := opts.Client
	if client == nil {
		client = netutil.NewHTTPClient(netutil.HTTPClientOptions{})
	}

	webhookMode := strings.EqualFold(cfg.Telegram.RunMode, coreconfig.RunModeWebhook)
	var poller tele.Poller = BuildLongPoller(cfg.Telegram.LongPollTimeoutSeconds)

	buildStart := time.Now()
	bot, err := tele.NewBot(NewSettings(cfg.Telegram.Token, poller, client))
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %s", netutil.Redact(err.Error()))
	}
	buildTook := logger.RoundMS(time.Since(buildStart))

	for _, mw := range opts.Middlewares {
		if mw.Use == nil {
			continue
		}
		bot.Use(mw.Use)
	}
	for _, route := range opts.Routes {
		if route.Endpoint == nil || route.Handler == nil {
			continue
		}
		bot.Handle(route.Endpoint, route.Handler)
	}
	SetupCommands(bot, reg)

	rt := Runtime{Bot: bot, Registry: reg}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	var runErr error
	if webhookMode {
		logger.Info(ctx, logger.CompTG, "mode",
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", net.JoinHostPort(cfg.Webhook.Listen, strconv.Itoa(cfg.Webhook.Port))),
			slog.String("path", cfg.Webhook.Path),
			slog.Int64("duration_ms", buildTook.Milliseconds()),
		)
		runErr = serveWebhook(ctx, bot, cfg.Webhook)
	} else {
		logger.Info(ctx, logger.CompTG, "mode",
			slog.String("mode", coreconfig.RunModeLongpoll),
			slog.Int("timeout_seconds", int(BuildLongPoller(cfg.Telegram.LongPollTimeoutSeconds).Timeout/time.Second)),
			slog.Int64("duration_ms", buildTook.Milliseconds()),
		)
		if !opts.DisableWebhookCleanup {
			if err := bot.RemoveWebhook(false); err != nil {
				logger.Warn(ctx, logger.CompTG, "delete_webhook",
					slog.String("status", "fail"),
					slog.String("err", netutil.Redact(err.Error())),
				)
			}
		}
		runErr = runLongPoll(ctx, bot)
	}

	var stopErr error
	if opts.OnStop != nil {
		stopErr = opts.OnStop(context.WithoutCancel(ctx), rt)
	}
	if stopErr != nil {
		return stopErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func runLongPoll(ctx context.Context, bot *tele.Bot) error {
	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	select {
	case <-ctx.Done():
		bot.Stop()
		<-runDone
		return ctx.Err()
	case <-runDone:
		return nil
	}
}

func serveWebhook(ctx context.Context, bot *tele.Bot, cfg coreconfig.WebhookConfig) error {
	if cfg.URL != "" {
		wh := &tele.Webhook{
			Endpoint:    &tele.WebhookEndpoint{PublicURL: cfg.URL},
			SecretToken: cfg.SecretToken,
		}
		if err := bot.SetWebhook(wh); err != nil {
			return fmt.Errorf("telegram: set webhook: %s", netutil.Redact(err.Error()))
		}
		logger.Info(ctx, logger.CompTG, "set_webhook", slog.String("status", "ok"))
	}

	srv := &http.Server{
		Addr: net.JoinHostPort(cfg.Listen, strconv.Itoa(cfg.Port)),
		Handler: NewWebhookHandler(BotProcessor{Bot: bot}, WebhookHandlerOptions{
			Path:        cfg.Path,
			SecretToken: cfg.SecretToken,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("telegram: webhook server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn(ctx, logger.CompHTTP, "shutdown",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	return ctx.Err()
}
