package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/streamreel/internal/config"
	"github.com/kailas-cloud/streamreel/internal/db"
	dbRedis "github.com/kailas-cloud/streamreel/internal/db/redis"
	logpkg "github.com/kailas-cloud/streamreel/internal/logger"
	"github.com/kailas-cloud/streamreel/internal/metrics"
	"github.com/kailas-cloud/streamreel/internal/repository/respcache"
	chiTransport "github.com/kailas-cloud/streamreel/internal/transport/chi"
	"github.com/kailas-cloud/streamreel/internal/transport/helix"
	healthuc "github.com/kailas-cloud/streamreel/internal/usecase/health"
	streamsuc "github.com/kailas-cloud/streamreel/internal/usecase/streams"
	"github.com/kailas-cloud/streamreel/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting streamreel API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	// Register metrics explicitly (no init())
	metrics.Register()

	ctx := context.Background()
	store, cache := buildCache(ctx, cfg.Cache, logger)
	if cache.Enabled() {
		defer store.Close()
	}

	// Upstream chain: Helix client -> circuit breaker
	var fetcher streamsuc.Fetcher = helix.NewClient(&helix.Config{
		BaseURL:     cfg.Upstream.BaseURL,
		ClientID:    cfg.Upstream.ClientID,
		AccessToken: cfg.Upstream.AccessToken,
		Timeout:     time.Duration(cfg.Upstream.TimeoutSec) * time.Second,
		Logger:      logger,
	})
	if b := cfg.Upstream.Breaker; b.IsEnabled() {
		fetcher = helix.NewBreakerFetcher(fetcher, helix.BreakerConfig{
			MaxRequests:  b.MaxRequests,
			Interval:     time.Duration(b.IntervalSec) * time.Second,
			Timeout:      time.Duration(b.TimeoutSec) * time.Second,
			FailureRatio: b.FailureRatio,
			MinRequests:  b.MinRequests,
		}, logger)
	}

	streamsSvc := streamsuc.New(fetcher, cache, streamsuc.Config{
		MaxPages:  cfg.Upstream.MaxPages,
		CacheTTL:  time.Duration(cfg.Cache.TTLSec) * time.Second,
		KeyPrefix: cfg.Cache.KeyPrefix,
	})

	healthSvc := healthuc.New(cachePinger(store, cache))

	server := chiTransport.NewServer(streamsSvc, healthSvc, chiTransport.Options{
		DefaultLimit: cfg.Query.DefaultLimit,
		PageSize:     cfg.Upstream.PageSize,
	}, logger)

	r := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		CORSAllOrigins:    cfg.HTTP.CORSAllOrigins,
		RateLimitRequests: cfg.HTTP.RateLimit.Requests,
		RateLimitWindow:   time.Duration(cfg.HTTP.RateLimit.WindowSec) * time.Second,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// cachePinger returns the health probe for the cache, or a nil interface (not a typed
// nil pointer!) when the gateway is disabled.
func cachePinger(store db.Store, cache respcache.Gateway) healthuc.CachePinger {
	if !cache.Enabled() {
		return nil
	}
	return store
}

// buildCache connects the response cache. An unreachable Redis degrades to no caching
// instead of failing startup. The store is non-nil exactly when the gateway is enabled.
func buildCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (db.Store, respcache.Gateway) {
	if !cfg.Enabled {
		logger.Info("Response cache disabled")
		return nil, respcache.Noop{}
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		logger.Warn("Cache unavailable, serving without cache", zap.Error(err))
		return nil, respcache.Noop{}
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		logger.Warn("Cache not ready, serving without cache", zap.Error(err))
		store.Close()
		return nil, respcache.Noop{}
	}

	logger.Info("Connected to cache", zap.Strings("addrs", cfg.Addrs))
	return store, respcache.NewRedis(store, metrics.CacheOperationsTotal, logger)
}
