package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultPendingBatchTTL is how long a conflicting batch waits for a decision.
	DefaultPendingBatchTTL = 30 * time.Minute

	// DefaultDashboardCacheTTL bounds the life of cached dashboard results.
	DefaultDashboardCacheTTL = 5 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Decision is the operator's answer to a conflict list.
type Decision string

const (
	DecisionOverwrite Decision = "overwrite"
	DecisionDiscard   Decision = "discard"
)

// ParseDecision validates a decision string.
func ParseDecision(s string) (Decision, bool) {
	switch d := Decision(s); d {
	case DecisionOverwrite, DecisionDiscard:
		return d, true
	}
	return "", false
}

type noopMetrics struct{}

func (noopMetrics) IngestBatch(int, int) {}
func (noopMetrics) ConflictResolved(string) {}
func (noopMetrics) LedgerReset() {}
func (noopMetrics) QueryObserved(time.Duration) {}
func (noopMetrics) DashboardCache(bool) {}
