// Package main is the entrypoint for the seoscout API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seoscout/internal/api"
	"seoscout/internal/api/handler"
	mw "seoscout/internal/api/middleware"
	"seoscout/internal/bootstrap"
	"seoscout/internal/cache"
	"seoscout/internal/config"
	"seoscout/internal/payment"
	"seoscout/internal/queue"
	"seoscout/internal/store"
	"seoscout/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env, "payments_enabled", cfg.Payment.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create queue client
	redisQueue, err := queue.NewRedisQueue(cfg.Redis.URL, cfg.Queue)
	if err != nil {
		return fmt.Errorf("create queue: %w", err)
	}
	defer redisQueue.Close()

	// 6. Create store and seed the admin key on first boot
	pgStore := store.NewPostgresStore(pool)

	if err := bootstrap.EnsureAdminAPIKey(ctx, pgStore, cfg.Auth); err != nil {
		return fmt.Errorf("seed admin key: %w", err)
	}

	// 7. Payment client — optional, submissions fall back without it
	var pay payment.Client
	if cfg.Payment.Enabled {
		pay = payment.NewHTTPClient(cfg.Payment)
		slog.Info("payment client enabled", "base_url", cfg.Payment.BaseURL)
	}

	// 8. Build router with dependencies
	router := buildRouter(cfg, pgStore, redisCache, redisQueue, pay, time.Now().UTC())

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// buildRouter wires every handler to its dependencies.
func buildRouter(cfg *config.Config, st store.Store, c cache.Cache, q queue.Queue, pay payment.Client, startedAt time.Time) http.Handler {
	return api.NewRouter(api.Dependencies{
		Auth:      mw.NewAuth(st),
		RateLimit: mw.NewRateLimit(c, cfg.RateLimit.RequestsPerMinute),

		Health:       handler.NewHealthHandler(st, c),
		Metrics:      telemetry.Handler(),
		Availability: handler.NewAvailabilityHandler(st, c, q, startedAt),
		Schema:       handler.NewSchemaHandler(cfg.Audit),

		SubmitAudit:   handler.NewSubmitHandler(st, q, pay, *cfg),
		GetAudit:      handler.NewGetAuditHandler(st, c),
		GetReport:     handler.NewReportHandler(st),
		PaymentStatus: handler.NewPaymentStatusHandler(pay),

		CreateKey: handler.NewCreateKeyHandler(st),
		ListKeys:  handler.NewListKeysHandler(st),
		RevokeKey: handler.NewRevokeKeyHandler(st),
	})
}
