package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultLockTTL  = 30 * time.Second
	defaultLockPoll = 50 * time.Millisecond
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// WriteLock implements usecase.WriteLock with a Redis key shared by every
// instance writing to the same ledger.
type WriteLock struct {
	client *redis.Client
	key    string
	ttl     time.Duration
	poll    time.Duration
	refresh time.Duration
}

// NewWriteLock creates a new WriteLock.
func NewWriteLock(client *redis.Client) *WriteLock {
	return &WriteLock{
		client: client,
		key:    "finledger:write-lock",
		ttl:     defaultLockTTL,
		poll:    defaultLockPoll,
		refresh: defaultLockTTL / 3,
	}
}

// Acquire polls until the lock key is set or ctx is done. The key expires
// after ttl so a crashed holder cannot wedge the ledger; a live holder keeps
// extending it until the returned release func is called.
func (l *WriteLock) Acquire(ctx context.Context) (func(), error) {
	token := ulid.Make().String()

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, cacheErr("lock", err)
		}
		if ok {
			return l.hold(token), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// hold starts renewing the key under token and returns the func that stops
// renewal and deletes the key. The returned func is safe to call twice.
func (l *WriteLock) hold(token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(l.refresh)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !l.extend(token) {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			l.release(token)
		})
	}
}

// extend pushes the key's expiry out by ttl. It reports false once the key
// no longer carries token.
func (l *WriteLock) extend(token string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), l.refresh)
	defer cancel()

	n, err := refreshScript.Run(ctx, l.client, []string{l.key}, token, l.ttl.Milliseconds()).Int64()
	if err != nil {
		log.Warn().Err(err).Msg("failed to extend write lock")
		return true
	}
	if n == 0 {
		log.Warn().Str("key", l.key).Msg("write lock lost before release")
		return false
	}
	return true
}

func (l *WriteLock) release(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to release write lock")
	}
}
