package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	config "github.com/summarybot/summarybot/configs"
	"github.com/summarybot/summarybot/internal/application/services"
	"github.com/summarybot/summarybot/internal/core/ports"
	"github.com/summarybot/summarybot/internal/infrastructure/health"
	"github.com/summarybot/summarybot/internal/infrastructure/httpserver"
	"github.com/summarybot/summarybot/internal/infrastructure/memory"
	"github.com/summarybot/summarybot/internal/infrastructure/metrics"
	"github.com/summarybot/summarybot/internal/infrastructure/noop"
	"github.com/summarybot/summarybot/internal/infrastructure/redis"
	"github.com/summarybot/summarybot/internal/infrastructure/sqlite"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting summarybot core...")

	// Assemble the cache chain, fastest tier first. A tier that cannot be
	// prepared is left out; the chain tolerates a short chain the same way it
	// tolerates a tier outage.
	var tiers []ports.TierStore

	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.WithError(err).Warn("Redis unreachable at startup; the networked tier will recover when it does")
	} else {
		logger.Info("Connected to Redis successfully")
	}
	if redisClient != nil {
		defer redisClient.Close()
		tiers = append(tiers, redis.NewStore(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.CallTimeout))
	}

	sqliteStore, err := sqlite.New(cfg.Cache.SQLitePath)
	if err != nil {
		logger.WithError(err).Warn("Durable cache tier unavailable; continuing without it")
	} else {
		defer sqliteStore.Close()
		tiers = append(tiers, sqliteStore)
	}

	memStore := memory.New(cfg.Cache.MemorySweepInterval)
	defer memStore.Close()
	tiers = append(tiers, memStore, noop.New())

	cache := services.NewFallbackCache(tiers, &services.FallbackCacheConfig{
		DefaultTTL:      cfg.Cache.DefaultTTL,
		BackfillTimeout: cfg.Cache.BackfillTimeout,
	}, logger, &services.CacheMetrics{
		Hits:            metrics.GetCacheHits(),
		Misses:          metrics.GetCacheMisses(),
		Backfills:       metrics.GetCacheBackfills(),
		TierUnavailable: metrics.GetTierUnavailable(),
	})
	limiter := services.NewRateLimiterService(&services.RateLimiterConfig{
		UserInterval:    cfg.RateLimit.UserInterval,
		ChannelInterval: cfg.RateLimit.ChannelInterval,
	}, logger, metrics.GetRateLimitDenials())

	// The chat front-end drives this service; the HTTP server only borrows
	// its invalidation path.
	summaries := services.NewSummaryService(cache, limiter, logger)

	// Periodic maintenance: drop idle limiter entries and expired durable rows.
	maintenanceDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.RateLimit.PruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := limiter.PruneStale(time.Now()); n > 0 {
					logger.WithField("removed", n).Debug("pruned stale rate limiter entries")
				}
				if sqliteStore != nil {
					ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					if n, err := sqliteStore.PruneExpired(ctx); err == nil && n > 0 {
						logger.WithField("removed", n).Debug("pruned expired durable cache rows")
					}
					cancel()
				}
			case <-maintenanceDone:
				return
			}
		}
	}()

	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	server := httpserver.NewServer(serverConfig, logger, httpserver.ServerDeps{
		Summaries:      summaries,
		HealthCheckers: health.NewTierHealthCheckers(tiers),
	})

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	close(maintenanceDone)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
