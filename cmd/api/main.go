// Package main is the entry point for the Andes Trip Manager API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andes-trip-manager/backend/internal/app"
	"github.com/andes-trip-manager/backend/internal/auth"
	"github.com/andes-trip-manager/backend/internal/config"
	"github.com/andes-trip-manager/backend/internal/handler"
	"github.com/andes-trip-manager/backend/internal/ratelimit"
	"github.com/andes-trip-manager/backend/spec"
)

func main() {
	// --- Config -----------------------------------------------------------
	if err := config.LoadFile(".env"); err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Services ---------------------------------------------------------
	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer a.Close(logger)

	// Verify the DB is reachable before accepting traffic.
	if err := a.Pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := a.Migrate(ctx, logger); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// --- Router -----------------------------------------------------------
	server := handler.NewServer(handler.Deps{
		Trips:       a.Trips,
		Exports:     a.Exports,
		Imports:     a.Imports,
		Query:       a.Query,
		Diagnostics: a.Diagnostics,
		DB:          a.Pool,
		Logger:      logger,
		OpenAPI:     spec.OpenAPI,
	})
	router := handler.NewRouter(server, handler.RouterConfig{
		Verifier:       auth.NewVerifier(cfg.JWTSecret),
		RateLimiter:    ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst),
		MaxImportBytes: cfg.MaxImportBytes,
		CORSOrigins:    cfg.CORSOrigins,
		Metrics:        promhttp.Handler(),
	})

	// --- HTTP Server ------------------------------------------------------
	// Exports and imports of large trips take longer than plain CRUD, so the
	// write timeout is generous.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
