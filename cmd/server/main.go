package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/finledger/internal/adapter/http"
	"github.com/iho/finledger/internal/adapter/http/handler"
	"github.com/iho/finledger/internal/adapter/http/middleware"
	"github.com/iho/finledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/finledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/finledger/internal/adapter/repository/redis"
	sqliteRepo "github.com/iho/finledger/internal/adapter/repository/sqlite"
	"github.com/iho/finledger/internal/infrastructure/config"
	appLogger "github.com/iho/finledger/internal/infrastructure/logger"
	"github.com/iho/finledger/internal/infrastructure/metrics"
	"github.com/iho/finledger/internal/infrastructure/postgres"
	"github.com/iho/finledger/internal/infrastructure/redis"
	"github.com/iho/finledger/internal/infrastructure/sqlite"
	"github.com/iho/finledger/internal/usecase"
)

const rateLimitIdle = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	logger := appLogger.New(appLogger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	app, err := newApp(ctx, cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	if app.limiter != nil {
		go sweepVisitors(ctx, app.limiter)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

func sweepVisitors(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup(rateLimitIdle)
		}
	}
}

// ledgerStore is a ledger repository that can also report readiness.
type ledgerStore interface {
	usecase.TransactionRepository
	handler.Pinger
}

type application struct {
	handler http.Handler
	limiter *middleware.RateLimiter
	closers []func()
}

// Close releases store and Redis connections in reverse order.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg prometheus.Registerer) (*application, error) {
	app := &application{}

	// Ledger store
	repo, txManager, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeStore)

	// Coordination backends
	var (
		lock        usecase.WriteLock         = memory.NewWriteLock()
		pending     usecase.PendingBatchStore = memory.NewPendingBatchStore()
		cache       usecase.DashboardCache    = memory.NewDashboardCache()
		idempotency usecase.IdempotencyStore
		redisClient *goredis.Client
	)

	if cfg.RedisEnabled() {
		client, err := redis.NewClientWithRetry(ctx, cfg.RedisURL, cfg.DatabaseTimeout)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.closers = append(app.closers, func() { client.Close() })
		log.Info().Msg("connected to redis")

		redisClient = client
		lock = redisRepo.NewWriteLock(client)
		pending = redisRepo.NewPendingBatchStore(client)
		cache = redisRepo.NewDashboardCache(client)
		idempotency = redisRepo.NewIdempotencyStore(client)
	} else {
		log.Info().Msg("redis disabled, using in-process lock, pending batches and cache")
	}

	m := metrics.NewWithRegistry(reg)

	// Initialize use cases
	ingestUC := usecase.NewIngestionUseCase(txManager, repo, lock, pending, postgresRepo.NewBatchIDGenerator(),
		usecase.WithIngestionMetrics(m),
		usecase.WithIngestionLogger(logger),
		usecase.WithPendingTTL(cfg.PendingBatchTTL),
		usecase.WithIngestionCache(cache),
	)
	analyticsUC := usecase.NewAnalyticsUseCase(repo,
		usecase.WithDashboardCache(cache, cfg.DashboardCacheTTL),
		usecase.WithAnalyticsMetrics(m),
		usecase.WithAnalyticsLogger(logger),
	)
	ledgerUC := usecase.NewLedgerUseCase(repo, lock, cache, m, logger)

	if cfg.RateLimitRPS > 0 {
		app.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Create router
	app.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		IngestHandler:    handler.NewIngestHandler(ingestUC, cfg.MaxUploadBytes),
		AnalyticsHandler: handler.NewAnalyticsHandler(analyticsUC, cfg.ProjectionHorizon),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		HealthHandler:    handler.NewHealthHandler(repo, cfg.StoreDriver, redisClient),
		IdempotencyStore: idempotency,
		RateLimiter:      app.limiter,
		Logger:           logger,
	})

	return app, nil
}

func openStore(ctx context.Context, cfg *config.Config) (ledgerStore, usecase.TransactionManager, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.MigrateOnStart {
			if err := sqlite.RunMigrations(db); err != nil {
				db.Close()
				return nil, nil, nil, err
			}
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite ledger")
		return sqliteRepo.NewTransactionRepository(db), sqliteRepo.NewTxManager(db), func() { db.Close() }, nil

	case config.DriverPostgres:
		if cfg.MigrateOnStart {
			if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
				return nil, nil, nil, err
			}
		}
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Info().Msg("connected to postgres")
		return postgresRepo.NewTransactionRepository(pool), postgresRepo.NewTxManager(pool), pool.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
