package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/finledger/internal/domain"
)

// AnalyticsUseCase serves the read side of the ledger.
type AnalyticsUseCase struct {
	repo     TransactionRepository
	cache    DashboardCache
	metrics  Metrics
	logger   zerolog.Logger
	cacheTTL time.Duration
}

// AnalyticsOption configures an AnalyticsUseCase.
type AnalyticsOption func(*AnalyticsUseCase)

// WithDashboardCache caches composite results for ttl.
func WithDashboardCache(c DashboardCache, ttl time.Duration) AnalyticsOption {
	return func(uc *AnalyticsUseCase) {
		uc.cache = c
		uc.cacheTTL = ttl
	}
}

// WithAnalyticsMetrics records query timings and cache hits.
func WithAnalyticsMetrics(m Metrics) AnalyticsOption {
	return func(uc *AnalyticsUseCase) { uc.metrics = m }
}

// WithAnalyticsLogger sets the logger.
func WithAnalyticsLogger(l zerolog.Logger) AnalyticsOption {
	return func(uc *AnalyticsUseCase) { uc.logger = l }
}

// NewAnalyticsUseCase creates a new AnalyticsUseCase.
func NewAnalyticsUseCase(repo TransactionRepository, opts ...AnalyticsOption) *AnalyticsUseCase {
	uc := &AnalyticsUseCase{
		repo:     repo,
		metrics:  noopMetrics{},
		logger:   zerolog.Nop(),
		cacheTTL: DefaultDashboardCacheTTL,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// DashboardInput selects the rows and shape of a composite read.
type DashboardInput struct {
	Filter      domain.Filter
	Granularity domain.Granularity
	Horizon     int
}

// Dashboard is the composite read. Every part is derived from Rows.
type Dashboard struct {
	Rows       []domain.Transaction
	Summary    domain.Summary
	Series     []domain.BucketPoint
	Projection []domain.ProjectionPoint
}

// QueryAndSummarize runs one filtered query and derives the summary, the
// bucketed series and the projection from that same result.
func (uc *AnalyticsUseCase) QueryAndSummarize(ctx context.Context, input DashboardInput) (*Dashboard, error) {
	if err := input.Filter.Validate(); err != nil {
		return nil, err
	}
	if input.Horizon < 0 || input.Horizon > MaxHorizon {
		return nil, fmt.Errorf("%w: horizon %d outside 0..%d", domain.ErrInvalidFilter, input.Horizon, MaxHorizon)
	}

	key, cached := uc.cached(ctx, input)
	if cached != nil {
		return cached, nil
	}

	rows, err := uc.query(ctx, input.Filter)
	if err != nil {
		return nil, err
	}

	series := Bucket(rows, input.Granularity)
	dashboard := &Dashboard{
		Rows:       rows,
		Summary:    Summarize(rows),
		Series:     series,
		Projection: Project(series, input.Granularity, input.Horizon),
	}

	uc.store(ctx, key, dashboard)

	return dashboard, nil
}

// Transactions returns the filtered rows ordered by date.
func (uc *AnalyticsUseCase) Transactions(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return uc.query(ctx, filter)
}

// Breakdown groups the filtered rows along dimension.
func (uc *AnalyticsUseCase) Breakdown(ctx context.Context, filter domain.Filter, dimension domain.Dimension) ([]domain.BreakdownSlice, error) {
	if !dimension.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDimension, dimension)
	}
	rows, err := uc.Transactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	return Breakdown(rows, dimension)
}

// FilterOptions lists the flow and recurrence kinds present in the ledger.
func (uc *AnalyticsUseCase) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	rows, err := uc.query(ctx, domain.Filter{})
	if err != nil {
		return domain.FilterOptions{}, err
	}
	return CollectFilterOptions(rows), nil
}

func (uc *AnalyticsUseCase) query(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error) {
	start := time.Now()
	rows, err := uc.repo.Query(ctx, filter)
	uc.metrics.QueryObserved(time.Since(start))
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Transaction{}
	}
	domain.SortTransactions(rows)
	return rows, nil
}

func (uc *AnalyticsUseCase) cached(ctx context.Context, input DashboardInput) (string, *Dashboard) {
	if uc.cache == nil {
		return "", nil
	}

	version, err := uc.cache.Version(ctx)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("dashboard cache unavailable")
		return "", nil
	}
	key := dashboardKey(version, input)

	raw, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("dashboard cache read failed")
		return key, nil
	}
	uc.metrics.DashboardCache(ok)
	if !ok {
		return key, nil
	}

	var d Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable dashboard cache entry")
		return key, nil
	}
	return key, &d
}

func (uc *AnalyticsUseCase) store(ctx context.Context, key string, d *Dashboard) {
	if uc.cache == nil || key == "" {
		return
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, key, raw, uc.cacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("dashboard cache write failed")
	}
}

// dashboardKey is stable for equal inputs regardless of filter set order.
func dashboardKey(version int64, input DashboardInput) string {
	var b strings.Builder
	if input.Filter.From != nil {
		b.WriteString(input.Filter.From.String())
	}
	b.WriteByte('|')
	if input.Filter.To != nil {
		b.WriteString(input.Filter.To.String())
	}
	b.WriteByte('|')
	b.WriteString(strings.Join(sortedCopy(input.Filter.FlowKinds), ","))
	b.WriteByte('|')
	b.WriteString(strings.Join(sortedCopy(input.Filter.RecurrenceKinds), ","))
	fmt.Fprintf(&b, "|%s|%d", input.Granularity, input.Horizon)

	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("dashboard:%d:%s", version, hex.EncodeToString(sum[:12]))
}

func sortedCopy(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}
