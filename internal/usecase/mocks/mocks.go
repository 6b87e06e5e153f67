package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
)

var errForeignTx = errors.New("mocks: transaction not created by InMemoryTxManager")

// InMemoryTransactionRepository is an in-memory ledger keyed by Transaction.Key.
// Setting a *Func field overrides the default behaviour of that method.
type InMemoryTransactionRepository struct {
	mu   sync.RWMutex
	rows map[string]domain.Transaction

	ExistsTxFunc    func(ctx context.Context, tx usecase.Transaction, t domain.Transaction) (bool, error)
	InsertAllTxFunc func(ctx context.Context, tx usecase.Transaction, ts []domain.Transaction) ([]domain.Transaction, error)
	ReplaceAllFunc  func(ctx context.Context, ts []domain.Transaction) error
	ClearFunc       func(ctx context.Context) error
	QueryFunc       func(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error)
	CountFunc       func(ctx context.Context) (int64, error)

	QueryCalls int
}

func NewInMemoryTransactionRepository(seed ...domain.Transaction) *InMemoryTransactionRepository {
	r := &InMemoryTransactionRepository{rows: make(map[string]domain.Transaction)}
	for _, t := range seed {
		r.rows[t.Key()] = t
	}
	return r
}

// Rows returns a copy of the stored rows in date order.
func (r *InMemoryTransactionRepository) Rows() []domain.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Transaction, 0, len(r.rows))
	for _, t := range r.rows {
		out = append(out, t)
	}
	domain.SortTransactions(out)
	return out
}

func (r *InMemoryTransactionRepository) Exists(ctx context.Context, t domain.Transaction) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rows[t.Key()]
	return ok, nil
}

func (r *InMemoryTransactionRepository) ExistsTx(ctx context.Context, tx usecase.Transaction, t domain.Transaction) (bool, error) {
	if r.ExistsTxFunc != nil {
		return r.ExistsTxFunc(ctx, tx, t)
	}
	mtx, ok := tx.(*InMemoryTx)
	if !ok {
		return false, errForeignTx
	}
	return r.existsIn(mtx, t), nil
}

func (r *InMemoryTransactionRepository) existsIn(tx *InMemoryTx, t domain.Transaction) bool {
	if _, staged := tx.staged[t.Key()]; staged {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rows[t.Key()]
	return ok
}

func (r *InMemoryTransactionRepository) InsertAll(ctx context.Context, ts []domain.Transaction) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inserted := []domain.Transaction{}
	for _, t := range ts {
		if _, ok := r.rows[t.Key()]; ok {
			continue
		}
		r.rows[t.Key()] = t
		inserted = append(inserted, t)
	}
	return inserted, nil
}

func (r *InMemoryTransactionRepository) InsertAllTx(ctx context.Context, tx usecase.Transaction, ts []domain.Transaction) ([]domain.Transaction, error) {
	if r.InsertAllTxFunc != nil {
		return r.InsertAllTxFunc(ctx, tx, ts)
	}
	mtx, ok := tx.(*InMemoryTx)
	if !ok {
		return nil, errForeignTx
	}
	inserted := []domain.Transaction{}
	for _, t := range ts {
		if r.existsIn(mtx, t) {
			continue
		}
		mtx.staged[t.Key()] = t
		inserted = append(inserted, t)
	}
	return inserted, nil
}

func (r *InMemoryTransactionRepository) ReplaceAll(ctx context.Context, ts []domain.Transaction) error {
	if r.ReplaceAllFunc != nil {
		return r.ReplaceAllFunc(ctx, ts)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range ts {
		r.rows[t.Key()] = t
	}
	return nil
}

func (r *InMemoryTransactionRepository) Clear(ctx context.Context) error {
	if r.ClearFunc != nil {
		return r.ClearFunc(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = make(map[string]domain.Transaction)
	return nil
}

func (r *InMemoryTransactionRepository) Query(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error) {
	r.mu.Lock()
	r.QueryCalls++
	r.mu.Unlock()
	if r.QueryFunc != nil {
		return r.QueryFunc(ctx, filter)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Transaction{}
	for _, t := range r.rows {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *InMemoryTransactionRepository) Count(ctx context.Context) (int64, error) {
	if r.CountFunc != nil {
		return r.CountFunc(ctx)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.rows)), nil
}

// InMemoryTx stages inserts until Commit.
type InMemoryTx struct {
	repo       *InMemoryTransactionRepository
	staged     map[string]domain.Transaction
	committed  bool
	rolledBack bool
	commitErr  error
}

func (tx *InMemoryTx) Commit(ctx context.Context) error {
	if tx.rolledBack {
		return errors.New("mocks: commit after rollback")
	}
	if tx.commitErr != nil {
		tx.staged = map[string]domain.Transaction{}
		tx.rolledBack = true
		return tx.commitErr
	}
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	for k, t := range tx.staged {
		tx.repo.rows[k] = t
	}
	tx.committed = true
	return nil
}

func (tx *InMemoryTx) Rollback(ctx context.Context) error {
	if tx.committed {
		return nil
	}
	tx.staged = map[string]domain.Transaction{}
	tx.rolledBack = true
	return nil
}

// InMemoryTxManager begins InMemoryTx transactions against repo.
type InMemoryTxManager struct {
	repo *InMemoryTransactionRepository

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
	// CommitErr, when set, makes Commit discard staged rows and fail.
	CommitErr error
	Last      *InMemoryTx
}

func NewInMemoryTxManager(repo *InMemoryTransactionRepository) *InMemoryTxManager {
	return &InMemoryTxManager{repo: repo}
}

func (m *InMemoryTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.Last = &InMemoryTx{repo: m.repo, staged: make(map[string]domain.Transaction), commitErr: m.CommitErr}
	return m.Last, nil
}

// StubWriteLock counts acquisitions. It does not block.
type StubWriteLock struct {
	mu       sync.Mutex
	Acquired int
	Held     bool
	Err      error
}

func (l *StubWriteLock) Acquire(ctx context.Context) (func(), error) {
	if l.Err != nil {
		return nil, l.Err
	}
	l.mu.Lock()
	l.Acquired++
	l.Held = true
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		l.Held = false
		l.mu.Unlock()
	}, nil
}

// InMemoryPendingStore keeps parked batches in a map. TTLs are recorded, not enforced.
type InMemoryPendingStore struct {
	mu      sync.Mutex
	batches map[string][]domain.Transaction
	TTLs    map[string]time.Duration

	SaveErr error
	Deleted []string
}

func NewInMemoryPendingStore() *InMemoryPendingStore {
	return &InMemoryPendingStore{
		batches: make(map[string][]domain.Transaction),
		TTLs:    make(map[string]time.Duration),
	}
}

func (s *InMemoryPendingStore) Save(ctx context.Context, id string, batch []domain.Transaction, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.batches[id] = append([]domain.Transaction(nil), batch...)
	s.TTLs[id] = ttl
	return nil
}

func (s *InMemoryPendingStore) Load(ctx context.Context, id string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[id]
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	return batch, nil
}

// Has reports whether id is parked.
func (s *InMemoryPendingStore) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.batches[id]
	return ok
}

func (s *InMemoryPendingStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, id)
	s.Deleted = append(s.Deleted, id)
	return nil
}

// SequenceIDGenerator returns the configured ids in order.
type SequenceIDGenerator struct {
	mu  sync.Mutex
	IDs []string
	n   int
}

func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.n >= len(g.IDs) {
		return "batch-overflow"
	}
	id := g.IDs[g.n]
	g.n++
	return id
}

// InMemoryDashboardCache is a versioned map cache.
type InMemoryDashboardCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	version int64
	Bumps   int
}

func NewInMemoryDashboardCache() *InMemoryDashboardCache {
	return &InMemoryDashboardCache{entries: make(map[string][]byte)}
}

func (c *InMemoryDashboardCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *InMemoryDashboardCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *InMemoryDashboardCache) Version(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version, nil
}

func (c *InMemoryDashboardCache) Bump(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.Bumps++
	return nil
}
