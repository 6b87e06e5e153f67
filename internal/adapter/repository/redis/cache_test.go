package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/finledger/internal/domain"
)

func TestDashboardCache_SetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewDashboardCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "dashboard:0:abc", []byte(`{"rows":[]}`), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, found, err := cache.Get(ctx, "dashboard:0:abc")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !found || string(val) != `{"rows":[]}` {
		t.Fatalf("expected cached value, got found=%v val=%s", found, val)
	}
}

func TestDashboardCache_Miss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	_, found, err := NewDashboardCache(client).Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected miss without error, got %v", err)
	}
	if found {
		t.Fatalf("expected miss")
	}
}

func TestDashboardCache_TTL(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewDashboardCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, found, _ := cache.Get(ctx, "k"); found {
		t.Fatalf("expected entry to expire")
	}
}

func TestDashboardCache_VersionAndBump(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewDashboardCache(client)
	ctx := context.Background()

	v, err := cache.Version(ctx)
	if err != nil || v != 0 {
		t.Fatalf("expected version 0, got v=%d err=%v", v, err)
	}

	for i := 0; i < 2; i++ {
		if err := cache.Bump(ctx); err != nil {
			t.Fatalf("bump failed: %v", err)
		}
	}

	v, err = cache.Version(ctx)
	if err != nil || v != 2 {
		t.Fatalf("expected version 2, got v=%d err=%v", v, err)
	}
}

func TestDashboardCache_ServerDown(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()
	mr.Close()

	_, _, err := NewDashboardCache(client).Get(context.Background(), "k")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
