// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sandbox is a local, in-memory implementation of the Edura backend REST
contract.

It exists so the client can be exercised end to end (integration tests, demos,
offline development) without the production backend. Business rules live in
the [Store]; the HTTP layer mirrors the production envelope and status codes.

Architecture:

  - [Server] wires the chi router, the middleware chain and the [Handler] routes.
  - Access tokens are RS256 JWTs from [sec.TokenService]; refresh tokens are
    opaque and tracked by hash.
  - Only this package and cmd/sandbox import net/http server primitives.
*/
package sandbox

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taibuivan/edura/internal/platform/config"
	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/platform/metrics"
	"github.com/taibuivan/edura/internal/platform/middleware"
	"github.com/taibuivan/edura/internal/platform/sec"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger
}

// Dependencies groups what the server needs from the composition root.
type Dependencies struct {
	Store  *Store
	Tokens *sec.TokenService

	// Registry receives the server collectors and is exposed on /metrics.
	Registry *prometheus.Registry
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(ctx context.Context, cfg *config.SandboxConfig, logger *slog.Logger, deps Dependencies) *Server {
	router := chi.NewRouter()
	handler := NewHandler(deps.Store, deps.Tokens, cfg, logger)
	liveness, readiness := NewHealthHandlers(HealthDependencies{
		CheckTokens: func() error { return probeTokens(deps.Tokens) },
	}, logger)

	// # Middleware Chain
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.Measure(metrics.NewServer(deps.Registry)))
	router.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.RateLimit(ctx, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	router.Use(middleware.PanicRecovery())
	router.Use(middleware.CORS(cfg))
	router.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	router.Get("/health", liveness)
	router.Get("/ready", readiness)
	router.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	// # Application API
	router.Group(func(api chi.Router) {
		api.Use(middleware.Authenticate(deps.Tokens))
		api.Mount("/", handler.Routes())
	})

	return &Server{
		router: router,
		logger: logger,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, e.g. for httptest servers.
func (server *Server) Handler() http.Handler {
	return server.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (server *Server) ListenAndServe() error {
	server.logger.Info("server_starting", slog.String("addr", server.httpServer.Addr))
	return server.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (server *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.httpServer.Shutdown(ctx)
}
