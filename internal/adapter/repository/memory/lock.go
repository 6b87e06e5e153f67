package memory

import "context"

// WriteLock implements usecase.WriteLock for a single process.
type WriteLock struct {
	sem chan struct{}
}

// NewWriteLock creates a new WriteLock.
func NewWriteLock() *WriteLock {
	return &WriteLock{sem: make(chan struct{}, 1)}
}

// Acquire blocks until the lock is free or ctx is done.
func (l *WriteLock) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
