package postgres

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"
)

func TestNewPoolWithConfigDefaults(t *testing.T) {
	ctx := context.Background()

	// using invalid URL should return error
	if _, err := NewPoolWithConfig(ctx, PoolConfig{DatabaseURL: "not-a-url"}); err == nil {
		t.Fatalf("expected error when parsing invalid URL")
	}
}

func TestNewPoolWithConfigPingFailure(t *testing.T) {
	ctx := context.Background()
	cfg := PoolConfig{
		DatabaseURL: "postgres://invalid:5432/db?connect_timeout=1",
		MaxConns:    1,
		MinConns:    0,
	}

	_, err := NewPoolWithConfig(ctx, cfg)
	if err == nil {
		t.Fatalf("expected error when pool cannot connect")
	}
}

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestPingWithRetry(t *testing.T) {
	p := &flakyPinger{failures: 2}
	if err := pingWithRetry(context.Background(), p, 5*time.Second); err != nil {
		t.Fatalf("expected ping to succeed after retries, got %v", err)
	}
	if p.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", p.calls)
	}
}

func TestPingWithRetryNoTimeoutPingsOnce(t *testing.T) {
	p := &flakyPinger{failures: 1}
	if err := pingWithRetry(context.Background(), p, 0); err == nil {
		t.Fatalf("expected single failed ping to surface")
	}
	if p.calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", p.calls)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, name := range []string{
		"migrations/000001_create_transactions.up.sql",
		"migrations/000001_create_transactions.down.sql",
	} {
		if _, err := fs.Stat(migrationsFS, name); err != nil {
			t.Fatalf("expected %s to be embedded: %v", name, err)
		}
	}
}
