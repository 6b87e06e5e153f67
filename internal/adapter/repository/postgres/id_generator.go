package postgres

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// BatchIDGenerator issues ULIDs for parked batches. Ids generated within the
// same millisecond stay ordered.
type BatchIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewBatchIDGenerator creates a new BatchIDGenerator.
func NewBatchIDGenerator() *BatchIDGenerator {
	return &BatchIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Generate returns a new batch id.
func (g *BatchIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}
