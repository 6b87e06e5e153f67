package usecase

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"github.com/iho/finledger/internal/domain"
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	repo    TransactionRepository
	lock    WriteLock
	cache   DashboardCache
	metrics Metrics
	logger  zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase. cache and metrics may be nil.
func NewLedgerUseCase(repo TransactionRepository, lock WriteLock, cache DashboardCache, metrics Metrics, logger zerolog.Logger) *LedgerUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &LedgerUseCase{
		repo:    repo,
		lock:    lock,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Reset removes every transaction. Callers confirm with the operator first.
func (uc *LedgerUseCase) Reset(ctx context.Context) error {
	release, err := uc.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	before, err := uc.repo.Count(ctx)
	if err != nil {
		return err
	}

	if err := uc.repo.Clear(ctx); err != nil {
		return err
	}

	if uc.cache != nil {
		if err := uc.cache.Bump(ctx); err != nil {
			uc.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
		}
	}

	uc.metrics.LedgerReset()
	uc.logger.Warn().Int64("removed", before).Msg("ledger reset")

	return nil
}

// ExportTemplate returns the column names of a blank upload file.
func (uc *LedgerUseCase) ExportTemplate() []string {
	return slices.Clone(domain.Columns)
}

// Count returns the number of stored transactions.
func (uc *LedgerUseCase) Count(ctx context.Context) (int64, error) {
	return uc.repo.Count(ctx)
}
