// Package main is the entrypoint for the seoscout audit worker.
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

	"golang.org/x/sync/errgroup"

	"seoscout/internal/ai"
	"seoscout/internal/audit"
	"seoscout/internal/cache"
	"seoscout/internal/config"
	"seoscout/internal/fetch"
	"seoscout/internal/queue"
	"seoscout/internal/store"
	"seoscout/internal/telemetry"
	"seoscout/internal/worker"
)

const metricsShutdownTimeout = 5 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"concurrency", cfg.Worker.Concurrency,
		"fetch_engine", cfg.Fetch.Engine,
		"ai_provider", cfg.AI.Provider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 4. Create queue client
	redisQueue, err := queue.NewRedisQueue(cfg.Redis.URL, cfg.Queue)
	if err != nil {
		return fmt.Errorf("create queue: %w", err)
	}
	defer redisQueue.Close()

	// 5. Create fetchers. Page analysis reads through the cache; timing
	// samples always hit the origin so cached bodies cannot skew them.
	baseFetcher, err := fetch.NewFetcher(cfg.Fetch)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	analysisFetcher := fetch.NewCachedFetcher(baseFetcher, redisCache, cfg.Fetch.CacheTTL)

	// 6. Create AI provider
	provider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", provider.Name())

	// 7. Assemble the worker
	pgStore := store.NewPostgresStore(pool)
	svc := audit.NewService(analysisFetcher, baseFetcher, provider, *cfg)
	w := worker.New(*cfg, redisQueue, pgStore, svc)

	// 8. Run consumers, maintenance, and the metrics server
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < cfg.Worker.Concurrency; i++ {
		g.Go(func() error {
			return w.Run(gctx)
		})
	}
	g.Go(func() error {
		return w.RunMaintenance(gctx)
	})

	metricsSrv := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: metricsMux()}
	g.Go(func() error {
		slog.Info("metrics server listening", "addr", cfg.Server.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	slog.Info("worker running", "consumers", cfg.Worker.Concurrency)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	slog.Info("worker stopped gracefully")
	return nil
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	return mux
}
