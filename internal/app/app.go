// Package app wires configuration, the session backend and the conversation
// handler into a runnable Telegram bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/finbot/core/bootstrap"
	corecmd "github.com/m3rciful/finbot/core/cmd"
	coreconfig "github.com/m3rciful/finbot/core/config"
	"github.com/m3rciful/finbot/core/logger"
	"github.com/m3rciful/finbot/core/netutil"
	coretelegram "github.com/m3rciful/finbot/core/telegram"
	"github.com/m3rciful/finbot/core/telegram/commands"
	"github.com/m3rciful/finbot/core/telegram/router"
	"github.com/m3rciful/finbot/internal/answer"
	"github.com/m3rciful/finbot/internal/catalog"
	"github.com/m3rciful/finbot/internal/completion"
	"github.com/m3rciful/finbot/internal/conversation"
	"github.com/m3rciful/finbot/internal/prompt"
	"github.com/m3rciful/finbot/internal/session"
	"github.com/m3rciful/finbot/migrations"
)

// App is the assembled bot.
type App struct {
	cfg     *coreconfig.Config
	infra   *bootstrap.Result
	handler *conversation.Handler
}

// Bootstrap initializes logging and the session backend, then builds the App.
func Bootstrap(ctx context.Context, cfg *coreconfig.Config) (corecmd.TelegramApp, error) {
	cat := catalog.Builtin()
	infra, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:     cfg,
		Migrations: migrations.FS,
		Checks:     []func() error{cat.Validate},
	})
	if err != nil {
		return nil, err
	}
	a, err := New(cfg, cat, infra, nil)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	return a, nil
}

// New builds the App over already connected infrastructure. A nil client
// is built from cfg.Completion.
func New(cfg *coreconfig.Config, cat *catalog.Catalog, infra *bootstrap.Result, client completion.Client) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	if cat == nil {
		cat = catalog.Builtin()
	}
	if infra == nil {
		infra = &bootstrap.Result{}
	}

	store, err := newStore(cfg.Session, infra)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Completion.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = completion.DefaultTimeout
	}
	if client == nil {
		httpClient := netutil.NewHTTPClient(netutil.HTTPClientOptions{
			Timeout:               timeout,
			ResponseHeaderTimeout: timeout,
		})
		client, err = completion.NewClient(completion.Config{
			Provider:    cfg.Completion.Provider,
			APIKey:      cfg.Completion.APIKey,
			BaseURL:     cfg.Completion.BaseURL,
			Model:       cfg.Completion.Model,
			Temperature: cfg.Completion.Temperature,
			MaxTokens:   cfg.Completion.MaxTokens,
		}, httpClient)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}

	answers, err := answer.NewService(answer.Options{
		Catalog: cat,
		Prompts: prompt.NewBuilder(cat),
		Client:  client,
		System:  cfg.Completion.SystemPrompt,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	handler, err := conversation.NewHandler(conversation.Options{
		Catalog:  cat,
		Store:    store,
		Answers:  answers,
		Currency: cfg.Features.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	logger.Info(context.Background(), logger.CompApp, "wire",
		slog.String("status", "ok"),
		slog.String("session_backend", cfg.Session.Backend),
		slog.String("provider", cfg.Completion.Provider),
		slog.Bool("currency", cfg.Features.Currency),
	)
	return &App{cfg: cfg, infra: infra, handler: handler}, nil
}

func newStore(cfg coreconfig.SessionConfig, infra *bootstrap.Result) (session.Store, error) {
	switch cfg.Backend {
	case "", coreconfig.SessionMemory:
		return session.NewMemoryStore(), nil
	case coreconfig.SessionRedis:
		if infra.Redis == nil {
			return nil, errors.New("app: redis session backend without a redis client")
		}
		return session.NewRedisStore(infra.Redis, time.Duration(cfg.TTLHours)*time.Hour), nil
	case coreconfig.SessionPostgres:
		if infra.DB == nil {
			return nil, errors.New("app: postgres session backend without a database")
		}
		return session.NewPostgresStore(infra.DB), nil
	}
	return nil, fmt.Errorf("app: unknown session backend %q", cfg.Backend)
}

// Registry declares the /start command and the text and callback entry points.
func (a *App) Registry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.onStart,
		Description: "Choose language and open the menu",
	})
	reg.SetTextFallback(a.onText)
	reg.SetCallbackHandler(a.onCallback)
	return reg
}

// TelegramRunOptions satisfies cmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := a.Registry()
	routes := router.CommandRoutes(reg)
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg))
	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
	}, nil
}

// Close releases the session backend connections.
func (a *App) Close() error {
	return a.infra.Close()
}
