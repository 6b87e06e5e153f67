package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/finledger/internal/domain"
)

// IngestionUseCase reconciles uploaded batches with the ledger.
type IngestionUseCase struct {
	txManager  TransactionManager
	repo       TransactionRepository
	lock       WriteLock
	pending    PendingBatchStore
	idGen      IDGenerator
	cache      DashboardCache
	metrics    Metrics
	logger     zerolog.Logger
	pendingTTL time.Duration
}

// IngestionOption configures an IngestionUseCase.
type IngestionOption func(*IngestionUseCase)

// WithIngestionMetrics records ingest counters.
func WithIngestionMetrics(m Metrics) IngestionOption {
	return func(uc *IngestionUseCase) { uc.metrics = m }
}

// WithIngestionLogger sets the logger.
func WithIngestionLogger(l zerolog.Logger) IngestionOption {
	return func(uc *IngestionUseCase) { uc.logger = l }
}

// WithPendingTTL sets how long conflicting batches are parked.
func WithPendingTTL(ttl time.Duration) IngestionOption {
	return func(uc *IngestionUseCase) { uc.pendingTTL = ttl }
}

// WithIngestionCache invalidates cached dashboards after every write.
func WithIngestionCache(c DashboardCache) IngestionOption {
	return func(uc *IngestionUseCase) { uc.cache = c }
}

// NewIngestionUseCase creates a new IngestionUseCase.
func NewIngestionUseCase(
	txManager TransactionManager,
	repo TransactionRepository,
	lock WriteLock,
	pending PendingBatchStore,
	idGen IDGenerator,
	opts ...IngestionOption,
) *IngestionUseCase {
	uc := &IngestionUseCase{
		txManager:  txManager,
		repo:       repo,
		lock:       lock,
		pending:    pending,
		idGen:      idGen,
		metrics:    noopMetrics{},
		logger:     zerolog.Nop(),
		pendingTTL: DefaultPendingBatchTTL,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// IngestResult is the outcome of one upload.
type IngestResult struct {
	// BatchID is set only when conflicts were found and the batch was parked.
	BatchID   string
	Accepted  []domain.Transaction
	Conflicts []domain.Transaction
}

// AcceptedCount returns the number of newly stored rows.
func (r *IngestResult) AcceptedCount() int {
	return len(r.Accepted)
}

// HasConflicts reports whether the batch awaits a decision.
func (r *IngestResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// Ingest validates rows, stores the new ones and parks the batch when any
// row is already in the ledger.
func (uc *IngestionUseCase) Ingest(ctx context.Context, rows []domain.RawRecord) (*IngestResult, error) {
	batch, err := domain.ParseBatch(rows)
	if err != nil {
		return nil, err
	}

	accepted, conflicts, batchID, err := uc.classify(ctx, batch, true)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{BatchID: batchID, Accepted: accepted, Conflicts: conflicts}

	uc.metrics.IngestBatch(len(accepted), len(conflicts))
	uc.logger.Info().
		Str("batch_id", result.BatchID).
		Int("rows", len(batch)).
		Int("accepted", len(accepted)).
		Int("conflicts", len(conflicts)).
		Msg("batch ingested")

	return result, nil
}

// Classify stores each record that is not yet in the ledger and returns the
// rest as conflicts. Records are checked in order inside one database
// transaction, so a row repeated within the batch conflicts with itself.
func (uc *IngestionUseCase) Classify(ctx context.Context, batch []domain.Transaction) (accepted, conflicting []domain.Transaction, err error) {
	accepted, conflicting, _, err = uc.classify(ctx, batch, false)
	return accepted, conflicting, err
}

// classify is Classify that, when park is set and conflicts exist, parks the
// whole batch under a new id before committing. A failed park or commit
// leaves neither stored rows nor a parked batch behind.
func (uc *IngestionUseCase) classify(ctx context.Context, batch []domain.Transaction, park bool) (accepted, conflicting []domain.Transaction, batchID string, err error) {
	accepted = []domain.Transaction{}
	conflicting = []domain.Transaction{}
	if len(batch) == 0 {
		return accepted, conflicting, "", nil
	}

	release, err := uc.lock.Acquire(ctx)
	if err != nil {
		return nil, nil, "", err
	}
	defer release()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, nil, "", err
	}
	defer tx.Rollback(ctx)

	for _, record := range batch {
		exists, err := uc.repo.ExistsTx(ctx, tx, record)
		if err != nil {
			return nil, nil, "", err
		}
		if exists {
			conflicting = append(conflicting, record)
			continue
		}

		inserted, err := uc.repo.InsertAllTx(ctx, tx, []domain.Transaction{record})
		if err != nil {
			return nil, nil, "", err
		}
		if len(inserted) == 0 {
			conflicting = append(conflicting, record)
			continue
		}
		accepted = append(accepted, record)
	}

	if park && len(conflicting) > 0 {
		batchID = uc.idGen.Generate()
		if err := uc.pending.Save(ctx, batchID, batch, uc.pendingTTL); err != nil {
			return nil, nil, "", fmt.Errorf("park batch %s: %w", batchID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if batchID != "" {
			if derr := uc.pending.Delete(ctx, batchID); derr != nil {
				uc.logger.Warn().Err(derr).Str("batch_id", batchID).Msg("failed to drop parked batch after commit failure")
			}
		}
		return nil, nil, "", err
	}

	if len(accepted) > 0 {
		uc.invalidate(ctx)
	}

	return accepted, conflicting, batchID, nil
}

// ResolveConflicts applies the operator's decision to a batch. Overwrite
// rewrites every record of the batch; discard leaves the ledger untouched.
func (uc *IngestionUseCase) ResolveConflicts(ctx context.Context, batch []domain.Transaction, decision Decision) error {
	switch decision {
	case DecisionDiscard:
	case DecisionOverwrite:
		release, err := uc.lock.Acquire(ctx)
		if err != nil {
			return err
		}
		defer release()

		if err := uc.repo.ReplaceAll(ctx, batch); err != nil {
			return err
		}
		uc.invalidate(ctx)
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidDecision, decision)
	}

	uc.metrics.ConflictResolved(string(decision))
	uc.logger.Info().
		Str("decision", string(decision)).
		Int("rows", len(batch)).
		Msg("conflicts resolved")

	return nil
}

// ResolvePending resolves a batch parked by Ingest and forgets it.
func (uc *IngestionUseCase) ResolvePending(ctx context.Context, batchID string, decision Decision) error {
	if _, ok := ParseDecision(string(decision)); !ok {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDecision, decision)
	}

	batch, err := uc.pending.Load(ctx, batchID)
	if err != nil {
		return err
	}

	if err := uc.ResolveConflicts(ctx, batch, decision); err != nil {
		return err
	}

	if err := uc.pending.Delete(ctx, batchID); err != nil {
		uc.logger.Warn().Err(err).Str("batch_id", batchID).Msg("failed to drop resolved batch")
	}

	return nil
}

func (uc *IngestionUseCase) invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Bump(ctx); err != nil {
		uc.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}
