package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/finbot/core/config"
	coretelegram "github.com/m3rciful/finbot/core/telegram"
)

type fakeApp struct {
	closed bool
}

func (a *fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func (a *fakeApp) Close() error {
	a.closed = true
	return nil
}

func TestRunWiresLifecycle(t *testing.T) {
	t.Setenv("FINBOT_CONFIG", "custom.yaml")
	app := &fakeApp{}
	var loaded string
	var started bool

	err := Run(Options{
		ConfigEnvVar: "FINBOT_CONFIG",
		LoadConfig: func(path string) (*coreconfig.Config, error) {
			loaded = path
			cfg := coreconfig.Defaults()
			return &cfg, nil
		},
		Bootstrap: func(context.Context, *coreconfig.Config) (TelegramApp, error) {
			return app, nil
		},
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			if err := opts.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			started = true
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if loaded != "custom.yaml" {
		t.Fatalf("loaded %q", loaded)
	}
	if !started || !app.closed {
		t.Fatalf("started = %v closed = %v", started, app.closed)
	}
}

func TestRunDefaultConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	var loaded string
	boom := errors.New("stop here")
	err := Run(Options{
		LoadConfig: func(path string) (*coreconfig.Config, error) {
			loaded = path
			return nil, boom
		},
		Bootstrap: func(context.Context, *coreconfig.Config) (TelegramApp, error) {
			return nil, nil
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if loaded != DefaultConfigPath {
		t.Fatalf("loaded %q, want %q", loaded, DefaultConfigPath)
	}
}

func TestRunBootstrapFailure(t *testing.T) {
	boom := errors.New("no redis")
	err := Run(Options{
		LoadConfig: func(string) (*coreconfig.Config, error) {
			cfg := coreconfig.Defaults()
			return &cfg, nil
		},
		Bootstrap: func(context.Context, *coreconfig.Config) (TelegramApp, error) {
			return nil, boom
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
