// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command sandbox runs an in-memory implementation of the Edura backend API.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Load the signing key pair, or generate an ephemeral one.
//  4. Seed demo data (optional).
//  5. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/taibuivan/edura/internal/app"
	"github.com/taibuivan/edura/internal/platform/config"
	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/platform/sec"
	"github.com/taibuivan/edura/internal/sandbox"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := app.NewLogger(os.Stdout, false)
	slog.SetDefault(log)

	log.Info("sandbox_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.LoadSandbox()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = app.NewLogger(os.Stdout, true)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context, cancelled on shutdown to stop background sweepers.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// ── 3. Token Service ──────────────────────────────────────────────────
	var tokens *sec.TokenService
	if cfg.HasKeyFiles() {
		tokens, err = sec.NewTokenService(cfg.PrivateKeyPath, cfg.PublicKeyPath, constants.AuthIssuer)
	} else {
		log.Warn("signing_key_ephemeral")
		tokens, err = sec.NewEphemeralTokenService(constants.AuthIssuer)
	}
	must(log, err, "initialize token service")

	// ── 4. State ──────────────────────────────────────────────────────────
	store := sandbox.NewStore()
	if cfg.Seed {
		must(log, sandbox.Seed(store), "seed demo data")
		log.Info("demo_data_seeded",
			slog.String("admin", sandbox.SeedAdminEmail),
			slog.String("instructor", sandbox.SeedInstructorEmail),
			slog.String("student", sandbox.SeedStudentEmail),
		)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// ── 5. HTTP Server ────────────────────────────────────────────────────
	server := sandbox.NewServer(rootCtx, cfg, log, sandbox.Dependencies{
		Store:    store,
		Tokens:   tokens,
		Registry: registry,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
