package usecase

import (
	"context"
	"time"

	"github.com/iho/finledger/internal/domain"
)

// TransactionRepository is the ledger store. Rows are keyed by the six
// identity fields; duplicate tuples are never an error.
type TransactionRepository interface {
	Exists(ctx context.Context, t domain.Transaction) (bool, error)
	ExistsTx(ctx context.Context, tx Transaction, t domain.Transaction) (bool, error)
	// InsertAll inserts the records not already present and returns only those.
	InsertAll(ctx context.Context, ts []domain.Transaction) ([]domain.Transaction, error)
	InsertAllTx(ctx context.Context, tx Transaction, ts []domain.Transaction) ([]domain.Transaction, error)
	// ReplaceAll deletes then re-inserts every record inside one database transaction.
	ReplaceAll(ctx context.Context, ts []domain.Transaction) error
	Clear(ctx context.Context) error
	Query(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error)
	Count(ctx context.Context) (int64, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// WriteLock serializes ledger writers.
type WriteLock interface {
	// Acquire blocks until the lock is held and returns its release function.
	Acquire(ctx context.Context) (release func(), err error)
}

// PendingBatchStore parks batches that are waiting for a conflict decision.
type PendingBatchStore interface {
	Save(ctx context.Context, id string, batch []domain.Transaction, ttl time.Duration) error
	Load(ctx context.Context, id string) ([]domain.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// DashboardCache stores serialized dashboard results keyed by ledger version.
type DashboardCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Version returns a counter that changes on every ledger write.
	Version(ctx context.Context) (int64, error)
	// Bump invalidates every cached entry by advancing the version.
	Bump(ctx context.Context) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request failed so it can be retried.
	Release(ctx context.Context, key string) error
}

// Metrics receives usecase level counters.
type Metrics interface {
	IngestBatch(accepted, conflicts int)
	ConflictResolved(decision string)
	LedgerReset()
	QueryObserved(d time.Duration)
	DashboardCache(hit bool)
}
