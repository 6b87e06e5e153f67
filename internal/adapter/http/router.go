package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/finledger/internal/adapter/http/handler"
	"github.com/iho/finledger/internal/adapter/http/middleware"
	"github.com/iho/finledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	IngestHandler    *handler.IngestHandler
	AnalyticsHandler *handler.AnalyticsHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore).Wrap)
		}

		r.Post("/ingest", cfg.IngestHandler.Ingest)
		r.Post("/ingest/upload", cfg.IngestHandler.Upload)
		r.Post("/batches/{id}/resolve", cfg.IngestHandler.Resolve)

		r.Get("/dashboard", cfg.AnalyticsHandler.Dashboard)
		r.Get("/transactions", cfg.AnalyticsHandler.Transactions)
		r.Get("/breakdown", cfg.AnalyticsHandler.Breakdown)
		r.Get("/filters", cfg.AnalyticsHandler.Filters)

		r.Get("/template", cfg.LedgerHandler.Template)
		r.Post("/ledger/reset", cfg.LedgerHandler.Reset)
	})

	return r
}
