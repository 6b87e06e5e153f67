package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewClient creates a new Redis client and pings it once.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	return NewClientWithRetry(ctx, redisURL, 0)
}

// NewClientWithRetry creates a new Redis client and retries the start-up ping
// with exponential backoff for up to maxElapsed. Zero pings once.
func NewClientWithRetry(ctx context.Context, redisURL string, maxElapsed time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := pingWithRetry(ctx, client, maxElapsed); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func pingWithRetry(ctx context.Context, client *redis.Client, maxElapsed time.Duration) error {
	if maxElapsed <= 0 {
		return client.Ping(ctx).Err()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = maxElapsed

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := client.Ping(ctx).Err()
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("redis not ready")
		}
		return err
	}, backoff.WithContext(b, ctx))
}
