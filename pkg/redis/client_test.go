package redis

import (
	"testing"

	"github.com/cartshare/cartshare-backend/pkg/config"
)

func TestNewRequiresURL(t *testing.T) {
	t.Parallel()

	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestOptionsFromConfigAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7, MinIdleConns: 3}
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 {
		t.Fatalf("expected db 2 from url, got %d", opts.DB)
	}
	if opts.PoolSize != 7 {
		t.Fatalf("expected pool size 7, got %d", opts.PoolSize)
	}
}

func TestIdempotencyKeyNamespacing(t *testing.T) {
	t.Parallel()

	c := &Client{}
	key := c.IdempotencyKey("POST|/api/v1/carts/abc/checkout", "key-1")
	want := "cartshare:idempotency:POST|/api/v1/carts/abc/checkout:key-1"
	if key != want {
		t.Fatalf("expected %q, got %q", want, key)
	}
}
