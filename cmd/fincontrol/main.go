package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"fincontrol/internal/amqp"
	"fincontrol/internal/backend"
	"fincontrol/internal/cache"
	"fincontrol/internal/cli"
	"fincontrol/internal/config"
	"fincontrol/internal/engine"
	apphttp "fincontrol/internal/http"
	"fincontrol/internal/log"
	"fincontrol/internal/services"
)

const (
	cacheCleanupInterval = time.Minute
	readyTimeout         = 2 * time.Second
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg, log.ComponentApp)
	cfg = cli.LoadAndValidateConfig(logger.Logger)

	logger.Info("Starting fincontrol", log.FieldOperation, log.OpStartup, log.FieldBackend, cfg.DataBackend)

	calcDefaults, err := config.LoadCalcDefaults(cfg.CalcDefaultsPath)
	if err != nil {
		logger.Error("Failed to load calculator defaults", "error", err, "path", cfg.CalcDefaultsPath)
		os.Exit(1)
	}

	ctx := context.Background()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	store := cli.OpenBackend(ctx, logger.WithComponent(log.ComponentBackend).Logger, bcfg)

	// Redis when configured, otherwise in-process LRUs cleaned by the manager
	cacheLogger := logger.WithComponent(log.ComponentCache).Logger
	cacheManager := cache.NewManager(cacheLogger)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		logger.Info("Using Redis cache")
	}
	dashboards := newCache[services.Dashboard](cfg, redisClient, cacheManager, "fincontrol:views:", cacheLogger)
	projections := newCache[engine.ProjectionResult](cfg, redisClient, cacheManager, "fincontrol:projection:", cacheLogger)
	drivers := newCache[engine.DriverResult](cfg, redisClient, cacheManager, "fincontrol:driver:", cacheLogger)
	cacheManager.StartCleanup(cacheCleanupInterval)

	// Publishing is optional; without it the worker relies on reconciliation.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP).Logger)
		if err != nil {
			logger.Warn("AMQP unavailable, transaction events will not be published", "error", err)
		} else {
			publisher = amqpClient
			logger.Info("Publishing transaction events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	dashboard := services.NewDashboardService(store.Backend, dashboards, logger.Logger)
	ledgerSvc := services.NewLedgerService(store.Backend, publisher, dashboard, logger.Logger)
	calculator := services.NewCalculatorService(calcDefaults, projections, drivers, logger.Logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Ledger:     ledgerSvc,
		Views:      dashboard,
		Calculator: calculator,
		Ready:      readiness(store.Backend),
		CacheStats: cacheManager.Stats,
		RateLimit:  cfg.RateLimit,
		Logger:     logger,
	})

	shutdownCtx, done := cli.GracefulShutdown(logger.Logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("Failed to close AMQP client", "error", err)
			}
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close backend", "error", err)
		}
	})

	logger.Info("Listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}

func newCache[T any](cfg *config.Config, client *redis.Client, m *cache.Manager, prefix string, logger *slog.Logger) cache.Cache[T] {
	if client != nil {
		return cache.NewRedisCache[T](client, prefix, cfg.CacheTTL, logger)
	}
	lru := cache.NewLRUCache[T](cfg.CacheSize, cfg.CacheTTL)
	m.Register(lru)
	return lru
}

type pinger interface {
	Ping(ctx context.Context) error
}

// readiness pings stores that support it and otherwise lists transactions.
func readiness(store backend.Backend) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, readyTimeout)
		defer cancel()
		if p, ok := store.(pinger); ok {
			return p.Ping(ctx)
		}
		_, err := store.ListTransactions(ctx)
		return err
	}
}
