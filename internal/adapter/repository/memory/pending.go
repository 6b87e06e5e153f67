package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/iho/finledger/internal/domain"
)

type pendingEntry struct {
	batch     []domain.Transaction
	expiresAt time.Time
}

// PendingBatchStore implements usecase.PendingBatchStore in process memory.
// Expired batches are dropped lazily on access.
type PendingBatchStore struct {
	mu      sync.Mutex
	entries map[string]pendingEntry
	now     func() time.Time
}

// NewPendingBatchStore creates a new PendingBatchStore.
func NewPendingBatchStore() *PendingBatchStore {
	return &PendingBatchStore{
		entries: make(map[string]pendingEntry),
		now:     time.Now,
	}
}

// Save stores a copy of batch under id until ttl elapses.
func (s *PendingBatchStore) Save(_ context.Context, id string, batch []domain.Transaction, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	s.entries[id] = pendingEntry{
		batch:     slices.Clone(batch),
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Load returns the batch stored under id or domain.ErrBatchNotFound.
func (s *PendingBatchStore) Load(_ context.Context, id string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || !s.now().Before(e.expiresAt) {
		delete(s.entries, id)
		return nil, fmt.Errorf("%w: %s", domain.ErrBatchNotFound, id)
	}
	return slices.Clone(e.batch), nil
}

// Delete removes the batch under id.
func (s *PendingBatchStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

func (s *PendingBatchStore) sweep() {
	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
