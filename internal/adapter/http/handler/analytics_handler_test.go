package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/finledger/internal/adapter/http/dto"
	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
)

type analyticsServiceStub struct {
	dashboardFn    func(ctx context.Context, input usecase.DashboardInput) (*usecase.Dashboard, error)
	transactionsFn func(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error)
	breakdownFn    func(ctx context.Context, filter domain.Filter, dimension domain.Dimension) ([]domain.BreakdownSlice, error)
	optionsFn      func(ctx context.Context) (domain.FilterOptions, error)
}

func (s *analyticsServiceStub) QueryAndSummarize(ctx context.Context, input usecase.DashboardInput) (*usecase.Dashboard, error) {
	return s.dashboardFn(ctx, input)
}

func (s *analyticsServiceStub) Transactions(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error) {
	return s.transactionsFn(ctx, filter)
}

func (s *analyticsServiceStub) Breakdown(ctx context.Context, filter domain.Filter, dimension domain.Dimension) ([]domain.BreakdownSlice, error) {
	return s.breakdownFn(ctx, filter, dimension)
}

func (s *analyticsServiceStub) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	return s.optionsFn(ctx)
}

func emptyDashboard() *usecase.Dashboard {
	return &usecase.Dashboard{
		Rows:       []domain.Transaction{},
		Series:     []domain.BucketPoint{},
		Projection: []domain.ProjectionPoint{},
	}
}

func TestAnalyticsHandler_Dashboard_PassesQuery(t *testing.T) {
	var captured usecase.DashboardInput
	handler := NewAnalyticsHandler(&analyticsServiceStub{
		dashboardFn: func(ctx context.Context, input usecase.DashboardInput) (*usecase.Dashboard, error) {
			captured = input
			return emptyDashboard(), nil
		},
	}, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?from=2024-01-01&flow_kind=income&granularity=quarterly&horizon=3", nil)
	rec := httptest.NewRecorder()
	handler.Dashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Granularity != domain.Quarter || captured.Horizon != 3 {
		t.Fatalf("unexpected input %+v", captured)
	}
	if captured.Filter.From == nil || captured.Filter.From.String() != "2024-01-01" || len(captured.Filter.FlowKinds) != 1 {
		t.Fatalf("unexpected filter %+v", captured.Filter)
	}

	var resp dto.DashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Granularity != "quarter" || resp.Transactions == nil || resp.Projection == nil {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAnalyticsHandler_Dashboard_Defaults(t *testing.T) {
	var captured usecase.DashboardInput
	handler := NewAnalyticsHandler(&analyticsServiceStub{
		dashboardFn: func(ctx context.Context, input usecase.DashboardInput) (*usecase.Dashboard, error) {
			captured = input
			return emptyDashboard(), nil
		},
	}, 8)

	rec := httptest.NewRecorder()
	handler.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Granularity != domain.DefaultGranularity || captured.Horizon != 8 {
		t.Fatalf("expected defaults, got %+v", captured)
	}
}

func TestAnalyticsHandler_Dashboard_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		err        error
		wantStatus int
	}{
		{"bad granularity", "granularity=fortnight", nil, http.StatusBadRequest},
		{"bad horizon", "horizon=many", nil, http.StatusBadRequest},
		{"negative horizon", "horizon=-1", nil, http.StatusBadRequest},
		{"horizon above cap", "horizon=121", nil, http.StatusBadRequest},
		{"huge horizon", "horizon=1152921504606846976", nil, http.StatusBadRequest},
		{"bad date", "to=31/31/2024", nil, http.StatusBadRequest},
		{"store down", "", domain.ErrStoreUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := NewAnalyticsHandler(&analyticsServiceStub{
				dashboardFn: func(ctx context.Context, input usecase.DashboardInput) (*usecase.Dashboard, error) {
					called = true
					return nil, tt.err
				},
			}, 0)

			rec := httptest.NewRecorder()
			handler.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.err == nil && called {
				t.Fatalf("service should not be called for invalid input")
			}
		})
	}
}

func TestAnalyticsHandler_Dashboard_MaxHorizonAccepted(t *testing.T) {
	var got usecase.DashboardInput
	handler := NewAnalyticsHandler(&analyticsServiceStub{
		dashboardFn: func(ctx context.Context, input usecase.DashboardInput) (*usecase.Dashboard, error) {
			got = input
			return emptyDashboard(), nil
		},
	}, 1000)

	rec := httptest.NewRecorder()
	handler.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?horizon=120", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Horizon != usecase.MaxHorizon {
		t.Fatalf("expected horizon %d, got %d", usecase.MaxHorizon, got.Horizon)
	}

	rec = httptest.NewRecorder()
	handler.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	if got.Horizon != usecase.MaxHorizon {
		t.Fatalf("expected oversized default to be capped at %d, got %d", usecase.MaxHorizon, got.Horizon)
	}
}

func TestAnalyticsHandler_Transactions(t *testing.T) {
	row := domain.Transaction{
		FlowKind:       domain.FlowExpense,
		Amount:         decimal.NewFromInt(20),
		RecurrenceKind: "one-time",
		OccurredOn:     domain.NewDate(2024, time.January, 20),
		Title:          "Cinema",
	}
	handler := NewAnalyticsHandler(&analyticsServiceStub{
		transactionsFn: func(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error) {
			return []domain.Transaction{row}, nil
		},
	}, 0)

	rec := httptest.NewRecorder()
	handler.Transactions(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil))

	var resp dto.TransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 || resp.Transactions[0].Title != "Cinema" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAnalyticsHandler_Breakdown(t *testing.T) {
	var gotDim domain.Dimension
	handler := NewAnalyticsHandler(&analyticsServiceStub{
		breakdownFn: func(ctx context.Context, filter domain.Filter, dimension domain.Dimension) ([]domain.BreakdownSlice, error) {
			gotDim = dimension
			if !dimension.Valid() {
				return nil, domain.ErrInvalidDimension
			}
			return []domain.BreakdownSlice{{Label: "expense", Amount: decimal.NewFromInt(20), Count: 1}}, nil
		},
	}, 0)

	rec := httptest.NewRecorder()
	handler.Breakdown(rec, httptest.NewRequest(http.MethodGet, "/api/v1/breakdown", nil))
	if rec.Code != http.StatusOK || gotDim != domain.DimensionByFlowKind {
		t.Fatalf("expected default dimension, got status=%d dim=%s", rec.Code, gotDim)
	}

	rec = httptest.NewRecorder()
	handler.Breakdown(rec, httptest.NewRequest(http.MethodGet, "/api/v1/breakdown?dimension=colour", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown dimension, got %d", rec.Code)
	}
}

func TestAnalyticsHandler_Filters(t *testing.T) {
	handler := NewAnalyticsHandler(&analyticsServiceStub{
		optionsFn: func(ctx context.Context) (domain.FilterOptions, error) {
			return domain.FilterOptions{FlowKinds: []string{"expense", "income"}}, nil
		},
	}, 0)

	rec := httptest.NewRecorder()
	handler.Filters(rec, httptest.NewRequest(http.MethodGet, "/api/v1/filters", nil))

	var resp dto.FilterOptionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.FlowKinds) != 2 || resp.RecurrenceKinds == nil {
		t.Fatalf("unexpected response %+v", resp)
	}
}
