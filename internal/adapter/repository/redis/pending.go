package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/finledger/internal/domain"
)

// PendingBatchStore implements usecase.PendingBatchStore using Redis.
type PendingBatchStore struct {
	client *redis.Client
	prefix string
}

// NewPendingBatchStore creates a new PendingBatchStore.
func NewPendingBatchStore(client *redis.Client) *PendingBatchStore {
	return &PendingBatchStore{
		client: client,
		prefix: "finledger:pending:",
	}
}

// Save stores batch under id until ttl elapses.
func (s *PendingBatchStore) Save(ctx context.Context, id string, batch []domain.Transaction, ttl time.Duration) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode pending batch: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+id, data, ttl).Err(); err != nil {
		return cacheErr("save pending", err)
	}
	return nil
}

// Load returns the batch stored under id or domain.ErrBatchNotFound.
func (s *PendingBatchStore) Load(ctx context.Context, id string) ([]domain.Transaction, error) {
	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", domain.ErrBatchNotFound, id)
	}
	if err != nil {
		return nil, cacheErr("load pending", err)
	}

	var batch []domain.Transaction
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to decode pending batch %s: %w", id, err)
	}
	return batch, nil
}

// Delete removes the batch. Deleting a missing batch is not an error.
func (s *PendingBatchStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return cacheErr("delete pending", err)
	}
	return nil
}
