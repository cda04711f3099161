package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/weather-index-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-index-etl/internal/adapter/kafka"
	"github.com/couchcryptid/weather-index-etl/internal/adapter/owm"
	"github.com/couchcryptid/weather-index-etl/internal/collector"
	"github.com/couchcryptid/weather-index-etl/internal/config"
	"github.com/couchcryptid/weather-index-etl/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.OWMAPIKey == "" {
		slog.Error("OWM_API_KEY is required for the collector")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := owm.NewClient(cfg.OWMAPIKey, cfg.OWMBaseURL, cfg.OWMTimeout, metrics, logger)
	fetcher := owm.NewCachedFetcher(client, cfg.OWMCacheSize, cfg.OWMCacheTTL, metrics)
	logger.Info("owm client ready", "cache_size", cfg.OWMCacheSize, "cache_ttl", cfg.OWMCacheTTL, "timeout", cfg.OWMTimeout)

	writer := kafkaadapter.NewSourceWriter(cfg, logger)

	coll := collector.New(fetcher, writer, cfg.CollectLocations, cfg.CollectInterval, metrics, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, coll, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the collection scheduler.
	if err := coll.Start(); err != nil {
		logger.Error("collector start error", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	coll.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
