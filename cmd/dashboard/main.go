package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/wildlife-health-watch/internal/adapter/httpadapter"
	"github.com/couchcryptid/wildlife-health-watch/internal/adapter/web"
	"github.com/couchcryptid/wildlife-health-watch/internal/config"
	"github.com/couchcryptid/wildlife-health-watch/internal/generator"
	"github.com/couchcryptid/wildlife-health-watch/internal/observability"
	"github.com/couchcryptid/wildlife-health-watch/internal/pipeline"
	"github.com/couchcryptid/wildlife-health-watch/internal/store"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	var source pipeline.Source
	if cfg.DataCSV != "" {
		source = pipeline.NewCSVSource(cfg.DataCSV)
		logger.Info("loading cases from csv", "path", cfg.DataCSV)
	} else {
		source = pipeline.NewGeneratorSource(generator.Request{
			Count:      cfg.RecordCount,
			Seed:       cfg.RandomSeed,
			WindowDays: cfg.WindowDays,
			Prefix:     cfg.CaseIDPrefix,
		}, clock)
		logger.Info("generating synthetic cases",
			"count", cfg.RecordCount, "seed", cfg.RandomSeed, "window_days", cfg.WindowDays)
	}

	p := pipeline.New(source, store.NewCache(), clock, logger, metrics)

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.Error("failed to parse dashboard template", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, renderer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Warm the snapshot so the first page view does not pay for generation.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("snapshot warm-up error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
