package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/finledger/internal/domain"
)

// DashboardCache implements usecase.DashboardCache using Redis. Entries carry
// the ledger version in their key, so bumping the version orphans them until
// their TTL runs out.
type DashboardCache struct {
	client     *redis.Client
	prefix     string
	versionKey string
}

// NewDashboardCache creates a new DashboardCache.
func NewDashboardCache(client *redis.Client) *DashboardCache {
	return &DashboardCache{
		client:     client,
		prefix:     "finledger:cache:",
		versionKey: "finledger:ledger-version",
	}
}

// Get returns the cached value for key. A missing key is not an error.
func (c *DashboardCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, cacheErr("get", err)
	}
	return val, true, nil
}

// Set stores value with ttl.
func (c *DashboardCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return cacheErr("set", err)
	}
	return nil
}

// Version returns the current ledger version, zero before the first write.
func (c *DashboardCache) Version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, c.versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, cacheErr("version", err)
	}
	return v, nil
}

// Bump advances the ledger version.
func (c *DashboardCache) Bump(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.versionKey).Err(); err != nil {
		return cacheErr("bump", err)
	}
	return nil
}

func cacheErr(op string, err error) error {
	return fmt.Errorf("%w: redis %s: %w", domain.ErrStoreUnavailable, op, err)
}
