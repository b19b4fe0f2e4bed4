package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	coreconfig "github.com/m3rciful/finbot/core/config"
	coredatabase "github.com/m3rciful/finbot/core/database"
	"github.com/m3rciful/finbot/core/logger"
)

// Options control the bootstrap pipeline.
type Options struct {
	Config *coreconfig.Config
	// Migrations is applied when the session backend is postgres.
	Migrations fs.FS
	// Checks run after the logger is up and before any backend is dialed.
	Checks []func() error

	LoggerInit   func(*coreconfig.Config) error
	Connect      func(context.Context, coredatabase.Config) (*sqlx.DB, error)
	Migrate      func(context.Context, coredatabase.Config, fs.FS) error
	ConnectRedis func(context.Context, string) (*redis.Client, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
// DB and Redis are nil unless the session backend needs them.
type Result struct {
	DB    *sqlx.DB
	Redis *redis.Client
}

// Close releases the backend connections held by r.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.DB != nil {
		errs = append(errs, r.DB.Close())
	}
	if r.Redis != nil {
		errs = append(errs, r.Redis.Close())
	}
	return errors.Join(errs...)
}

// Run initializes the logger, runs startup checks and connects the session backend.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	cfg := opts.Config

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	for _, check := range opts.Checks {
		if err := check(); err != nil {
			return nil, fmt.Errorf("bootstrap: startup check failed: %w", err)
		}
	}

	res := &Result{}
	switch cfg.Session.Backend {
	case coreconfig.SessionPostgres:
		connect := opts.Connect
		if connect == nil {
			connect = coredatabase.Connect
		}
		db, err := connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
		}
		if opts.Migrations != nil {
			migrate := opts.Migrate
			if migrate == nil {
				migrate = coredatabase.RunMigrations
			}
			if err := migrate(ctx, cfg.Database, opts.Migrations); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
			}
		}
		res.DB = db
	case coreconfig.SessionRedis:
		connectRedis := opts.ConnectRedis
		if connectRedis == nil {
			connectRedis = ConnectRedis
		}
		rdb, err := connectRedis(ctx, cfg.Session.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: redis initialization failed: %w", err)
		}
		res.Redis = rdb
	}

	logger.Info(ctx, logger.CompApp, "bootstrap",
		slog.String("status", "ok"),
		slog.String("session_backend", cfg.Session.Backend),
	)
	return res, nil
}

// ConnectRedis parses url, dials the server and verifies it answers PING.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		logger.Error(ctx, logger.CompSession, "redis.connect",
			slog.String("status", "fail"),
			slog.String("addr", opt.Addr),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info(ctx, logger.CompSession, "redis.connect",
		slog.String("status", "ok"),
		slog.String("addr", opt.Addr),
	)
	return rdb, nil
}
