package memory

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// DashboardCache implements usecase.DashboardCache in process memory. Bump
// drops every entry, since no other instance can hold stale copies.
type DashboardCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	version int64
	now     func() time.Time
}

// NewDashboardCache creates a new DashboardCache.
func NewDashboardCache() *DashboardCache {
	return &DashboardCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached value for key.
func (c *DashboardCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value with ttl.
func (c *DashboardCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{value: value, expiresAt: c.now().Add(ttl)}
	return nil
}

// Version returns the current ledger version.
func (c *DashboardCache) Version(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.version, nil
}

// Bump advances the version and clears the cache.
func (c *DashboardCache) Bump(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	clear(c.entries)
	return nil
}
