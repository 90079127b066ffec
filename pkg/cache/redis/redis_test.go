package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"devapi/pkg/cache"
)

func setupTestRedis(t *testing.T, localTTL time.Duration) *Cache {
	t.Helper()

	config := DefaultConfig()
	config.Name = "TestRedis"
	config.KeyPrefix = "test:devapi:"
	config.DialTimeout = 2 * time.Second
	config.LocalTTL = localTTL

	c, err := New(config)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	return c
}

func TestNew_NoAddress(t *testing.T) {
	config := DefaultConfig()
	config.Addr = ""

	if _, err := New(config); err == nil {
		t.Error("Expected error without an address")
	}
}

func TestNew_Unreachable(t *testing.T) {
	config := DefaultConfig()
	config.Addr = "127.0.0.1:1"
	config.DialTimeout = 200 * time.Millisecond

	_, err := New(config)
	if !errors.Is(err, cache.ErrLayerUnavailable) {
		t.Errorf("Expected ErrLayerUnavailable, got %v", err)
	}
}

func TestCache_SetGet(t *testing.T) {
	for _, localTTL := range []time.Duration{0, time.Second} {
		c := setupTestRedis(t, localTTL)
		ctx := context.Background()

		if c.Name() != "TestRedis" {
			t.Errorf("Expected name 'TestRedis', got '%s'", c.Name())
		}

		body := []byte(`{"Accounts":[{"accountId":"a1"}]}`)
		if err := c.Set(ctx, "GET:accounts", body, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		got, err := c.Get(ctx, "GET:accounts")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != string(body) {
			t.Errorf("Get = %s, want %s", got, body)
		}

		ttl, err := c.TTL(ctx, "GET:accounts")
		if err != nil {
			t.Fatalf("TTL failed: %v", err)
		}
		if ttl <= 0 || ttl > time.Minute {
			t.Errorf("TTL = %v", ttl)
		}

		if err := c.Delete(ctx, "GET:accounts"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	}
}

func TestCache_Miss(t *testing.T) {
	c := setupTestRedis(t, 0)

	if _, err := c.Get(context.Background(), "never-set"); !cache.IsNotFound(err) {
		t.Errorf("Expected miss, got %v", err)
	}
}

func TestCache_TTLs(t *testing.T) {
	c := setupTestRedis(t, 0)
	ctx := context.Background()

	if err := c.Set(ctx, "default-ttl", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	defer c.Delete(ctx, "default-ttl")

	ttl, err := c.TTL(ctx, "default-ttl")
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 30*time.Second {
		t.Errorf("zero TTL should use the one minute default, got %v", ttl)
	}

	if err := c.Set(ctx, "short-ttl", []byte("v"), 500*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	defer c.Delete(ctx, "short-ttl")
	if ttl, _ := c.TTL(ctx, "short-ttl"); ttl <= 0 || ttl > 500*time.Millisecond {
		t.Errorf("sub-second TTL = %v", ttl)
	}

	if _, err := c.TTL(ctx, "never-set"); !cache.IsNotFound(err) {
		t.Errorf("TTL of a missing key = %v", err)
	}
}
