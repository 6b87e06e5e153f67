package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iho/finledger/internal/adapter/http/dto"
	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
)

// AnalyticsService defines the behavior needed by AnalyticsHandler.
type AnalyticsService interface {
	QueryAndSummarize(ctx context.Context, input usecase.DashboardInput) (*usecase.Dashboard, error)
	Transactions(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error)
	Breakdown(ctx context.Context, filter domain.Filter, dimension domain.Dimension) ([]domain.BreakdownSlice, error)
	FilterOptions(ctx context.Context) (domain.FilterOptions, error)
}

// AnalyticsHandler serves the read side of the ledger.
type AnalyticsHandler struct {
	analyticsUC    AnalyticsService
	defaultHorizon int
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsUC AnalyticsService, defaultHorizon int) *AnalyticsHandler {
	if defaultHorizon <= 0 {
		defaultHorizon = usecase.DefaultHorizon
	}
	defaultHorizon = min(defaultHorizon, usecase.MaxHorizon)
	return &AnalyticsHandler{analyticsUC: analyticsUC, defaultHorizon: defaultHorizon}
}

// Dashboard returns rows, summary, series and projection for one filter.
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeDomainError(w, "invalid filter", err)
		return
	}

	g := domain.DefaultGranularity
	if s := r.URL.Query().Get("granularity"); s != "" {
		if g, err = domain.ParseGranularity(s); err != nil {
			writeDomainError(w, "invalid granularity", err)
			return
		}
	}

	horizon, err := parseIntQuery(r, "horizon", h.defaultHorizon)
	if err == nil && (horizon < 0 || horizon > usecase.MaxHorizon) {
		err = fmt.Errorf("%w: horizon must be between 0 and %d", domain.ErrInvalidFilter, usecase.MaxHorizon)
	}
	if err != nil {
		writeDomainError(w, "invalid horizon", err)
		return
	}

	dashboard, err := h.analyticsUC.QueryAndSummarize(r.Context(), usecase.DashboardInput{
		Filter:      filter,
		Granularity: g,
		Horizon:     horizon,
	})
	if err != nil {
		writeDomainError(w, "failed to build dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DashboardFromDomain(dashboard, g))
}

// Transactions lists the rows matching the filter.
func (h *AnalyticsHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeDomainError(w, "invalid filter", err)
		return
	}

	rows, err := h.analyticsUC.Transactions(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsResponse{
		Transactions: dto.TransactionsFromDomain(rows),
		Total:        len(rows),
	})
}

// Breakdown groups the filtered rows by the requested dimension.
func (h *AnalyticsHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeDomainError(w, "invalid filter", err)
		return
	}

	dim := domain.Dimension(r.URL.Query().Get("dimension"))
	if dim == "" {
		dim = domain.DimensionByFlowKind
	}

	slices, err := h.analyticsUC.Breakdown(r.Context(), filter, dim)
	if err != nil {
		writeDomainError(w, fmt.Sprintf("failed to break down by %s", dim), err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BreakdownFromDomain(dim, slices))
}

// Filters lists the distinct flow and recurrence kinds in the ledger.
func (h *AnalyticsHandler) Filters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.analyticsUC.FilterOptions(r.Context())
	if err != nil {
		writeDomainError(w, "failed to load filter options", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FilterOptionsFromDomain(opts))
}
