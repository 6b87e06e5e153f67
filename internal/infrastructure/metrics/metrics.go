package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger's Prometheus metrics and implements usecase.Metrics.
type Metrics struct {
	// Ingestion metrics
	IngestBatches       prometheus.Counter
	IngestRows          *prometheus.CounterVec
	ConflictResolutions *prometheus.CounterVec

	// Ledger metrics
	LedgerResets prometheus.Counter

	// Analytics metrics
	QueryDuration prometheus.Histogram
	CacheLookups  *prometheus.CounterVec
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates and registers all metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		IngestBatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "finledger_ingest_batches_total",
			Help: "Total number of ingested batches",
		}),
		IngestRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finledger_ingest_rows_total",
				Help: "Total ingested rows by outcome",
			},
			[]string{"outcome"},
		),
		ConflictResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finledger_conflict_resolutions_total",
				Help: "Total conflict resolutions by decision",
			},
			[]string{"decision"},
		),

		LedgerResets: factory.NewCounter(prometheus.CounterOpts{
			Name: "finledger_ledger_resets_total",
			Help: "Total number of ledger resets",
		}),

		QueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "finledger_query_duration_seconds",
			Help:    "Duration of ledger queries",
			Buckets: prometheus.DefBuckets,
		}),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finledger_dashboard_cache_total",
				Help: "Dashboard cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// IngestBatch records one ingested batch.
func (m *Metrics) IngestBatch(accepted, conflicts int) {
	m.IngestBatches.Inc()
	m.IngestRows.WithLabelValues("accepted").Add(float64(accepted))
	m.IngestRows.WithLabelValues("conflict").Add(float64(conflicts))
}

// ConflictResolved records a resolution decision.
func (m *Metrics) ConflictResolved(decision string) {
	m.ConflictResolutions.WithLabelValues(decision).Inc()
}

// LedgerReset records a ledger reset.
func (m *Metrics) LedgerReset() {
	m.LedgerResets.Inc()
}

// QueryObserved records the duration of one store query.
func (m *Metrics) QueryObserved(d time.Duration) {
	m.QueryDuration.Observe(d.Seconds())
}

// DashboardCache records a dashboard cache hit or miss.
func (m *Metrics) DashboardCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
