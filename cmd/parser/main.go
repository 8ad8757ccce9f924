package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"estateparser/internal/api"
	"estateparser/internal/config"
	"estateparser/internal/fetch"
	"estateparser/internal/monitoring"
	"estateparser/internal/parser"
	"estateparser/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("could not load config", zap.Error(err))
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	var fetcher fetch.Fetcher
	switch cfg.FetchBackend {
	case "browser":
		fetcher = fetch.NewBrowserFetcher(cfg.FetchTimeout, cfg.UserAgent, logger)
	case "static":
		fetcher = fetch.NewStaticFetcher(cfg.FetchTimeout, cfg.UserAgent, logger)
	default:
		logger.Fatal("unknown fetch backend", zap.String("backend", cfg.FetchBackend))
	}

	var store api.ListingStore
	if cfg.PostgresURL != "" {
		listingStore, err := storage.NewListingStore(context.Background(), cfg.PostgresURL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer listingStore.Close()
		store = listingStore
		logger.Info("listing store enabled")
	}

	var cache api.ResultCache
	if cfg.RedisAddr != "" && cfg.CacheTTL > 0 {
		resultCache := storage.NewResultCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		defer resultCache.Close()
		cache = resultCache
		logger.Info("response cache enabled", zap.Duration("ttl", cfg.CacheTTL))
	}

	metrics := monitoring.NewMetrics(nil)
	p := parser.New(fetcher, metrics, logger, cfg.SiteDelay)
	server := api.NewServer(cfg, p, store, cache, metrics, logger)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started",
		zap.String("port", cfg.ServerPort),
		zap.String("backend", fetcher.Name()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// In-flight requests have drained; the browser can go down now.
	if err := fetcher.Close(); err != nil {
		logger.Error("fetcher shutdown failed", zap.Error(err))
	}

	logger.Info("server exiting")
}

func newLogger(level string) *zap.Logger {
	if level == "debug" {
		logger, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return logger
}
