// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package app is the composition root of the Edura client.

It turns a [config.Config] into a ready [App]: durable session storage, the auth
state synchronizer, the guarded transport and the typed API client. No business
logic lives here. All wiring is explicit constructor injection.

# Startup Sequence

 1. Open the session store (file, redis or memory).
 2. Initialize the auth state from storage.
 3. Build the transport with its refresh guard and metrics.
 4. Build the API client.
*/
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/edura/internal/api"
	"github.com/taibuivan/edura/internal/authstate"
	"github.com/taibuivan/edura/internal/money"
	"github.com/taibuivan/edura/internal/platform/config"
	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/platform/metrics"
	redisstore "github.com/taibuivan/edura/internal/platform/redis"
	"github.com/taibuivan/edura/internal/session"
	"github.com/taibuivan/edura/internal/transport"
)

// ErrNoWatcher is returned by [App.Follow] when the session store cannot announce
// changes made by other processes.
var ErrNoWatcher = errors.New("app: session store does not support watching; use EDURA_SESSION_STORE=redis")

// App holds the wired client.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Sessions  *session.Manager
	Auth      *authstate.Synchronizer
	API       *api.Client
	Formatter *money.Formatter
	Registry  *prometheus.Registry

	watcher session.Watcher
	redis   *goredis.Client
}

// Option customizes [New].
type Option func(*options)

type options struct {
	store     session.Store
	transport []transport.Option
}

// WithSessionStore bypasses the configured backend, e.g. in tests.
func WithSessionStore(store session.Store) Option {
	return func(opts *options) { opts.store = store }
}

// WithTransportOptions appends options to the transport defaults.
func WithTransportOptions(extra ...transport.Option) Option {
	return func(opts *options) { opts.transport = append(opts.transport, extra...) }
}

// NewLogger builds the JSON logger shared by the commands.
func NewLogger(writer io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String(constants.FieldApp, constants.AppName))
}

// New wires the client from cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	settings := &options{}
	for _, opt := range opts {
		opt(settings)
	}

	app := &App{
		Config:    cfg,
		Logger:    logger,
		Formatter: money.NewFormatter(cfg.Currency, cfg.Locale),
		Registry:  prometheus.NewRegistry(),
	}

	// ── 1. Session Store ──────────────────────────────────────────────────
	store := settings.store
	if store == nil {
		opened, err := app.openStore(ctx)
		if err != nil {
			return nil, err
		}
		store = opened
	}
	if watcher, ok := store.(session.Watcher); ok {
		app.watcher = watcher
	}
	app.Sessions = session.NewManager(store, logger)

	// ── 2. Auth State ─────────────────────────────────────────────────────
	app.Auth = authstate.New(app.Sessions, logger)
	if err := app.Auth.Init(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("app: initialize auth state: %w", err)
	}

	// ── 3. Transport ──────────────────────────────────────────────────────
	transportOptions := []transport.Option{
		transport.WithTimeout(cfg.RequestTimeout),
		transport.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		transport.WithMetrics(metrics.NewClient(app.Registry)),
		transport.WithLogger(logger),
		transport.WithSessionExpiredHandler(app.onSessionExpired),
	}
	if cfg.RetryAfterRefresh {
		transportOptions = append(transportOptions, transport.WithRetryAfterRefresh())
	}
	transportOptions = append(transportOptions, settings.transport...)

	transportClient, err := transport.New(cfg.APIURL, app.Sessions, transportOptions...)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("app: build transport: %w", err)
	}

	// ── 4. API Client ─────────────────────────────────────────────────────
	app.API = api.New(transportClient, app.Sessions, app.Auth, logger)

	logger.Debug("client_initialized",
		slog.String("api_url", cfg.APIURL),
		slog.String("session_store", cfg.SessionStore),
		slog.Bool("authenticated", app.Auth.Snapshot().IsAuthenticated),
	)

	return app, nil
}

// openStore opens the configured session backend.
func (app *App) openStore(ctx context.Context) (session.Store, error) {
	switch app.Config.SessionStore {
	case config.StoreRedis:
		client, err := redisstore.NewClient(ctx, app.Config.RedisURL, app.Logger)
		if err != nil {
			return nil, fmt.Errorf("app: connect to redis: %w", err)
		}
		app.redis = client
		return session.NewRedisStore(client, app.Config.Profile, app.Logger), nil

	case config.StoreMemory:
		return session.NewMemoryStore(), nil

	default:
		store, err := session.NewFileStore(app.Config.SessionDir, app.Config.Profile)
		if err != nil {
			return nil, fmt.Errorf("app: open session file: %w", err)
		}
		return store, nil
	}
}

// onSessionExpired publishes the logout the transport just forced.
func (app *App) onSessionExpired(ctx context.Context) {
	if err := app.Auth.SetAuth(ctx, false, nil); err != nil {
		app.Logger.WarnContext(ctx, "session_expired_publish_failed", slog.Any("error", err))
	}
}

// Follow keeps the auth state in step with other processes sharing the session.
// It blocks until ctx is done.
func (app *App) Follow(ctx context.Context) error {
	if app.watcher == nil {
		return ErrNoWatcher
	}
	return app.Auth.Follow(ctx, app.watcher)
}

// Close releases external connections.
func (app *App) Close() {
	if app.redis == nil {
		return
	}
	if err := app.redis.Close(); err != nil {
		app.Logger.Error("redis_close_failed", slog.Any("error", err))
	}
}
