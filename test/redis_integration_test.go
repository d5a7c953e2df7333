//go:build integration
// +build integration

package test

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	goLink "github.com/MrEthical07/goLink"
	"github.com/redis/go-redis/v9"
)

// Runs the full link flow against a real Redis instance. Set REDIS_ADDR
// and run with -tags integration. The database is flushed.
func TestLinkFlowAgainstRealRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	server := httptest.NewServer(&flowPlatform{})
	t.Cleanup(server.Close)

	cfg := goLink.DefaultConfig()
	cfg.Remote.BaseURL = server.URL
	cfg.Remote.RetryBackoff = time.Millisecond
	cfg.Cookies.Backend = goLink.CookiesRedis

	accounts := &mapAccountStore{}
	engine, err := goLink.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAccountStore(accounts).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	ctx := context.Background()

	result, err := engine.BeginLink(ctx, "carol_ig", "hunter2!", "owner-42")
	if err != nil {
		t.Fatalf("BeginLink failed: %v", err)
	}
	if result.Status != goLink.StatusChallengeIssued {
		t.Fatalf("expected challenge, got %v (reason %v)", result.Status, result.Reason)
	}

	ttl, err := rdb.TTL(ctx, "alk:owner-42").Result()
	if err != nil {
		t.Fatalf("TTL lookup failed: %v", err)
	}
	if ttl <= 0 || ttl > 15*time.Minute {
		t.Fatalf("unexpected checkpoint TTL %v", ttl)
	}

	linked, err := engine.SubmitVerification(ctx, "424242", "owner-42")
	if err != nil {
		t.Fatalf("SubmitVerification failed: %v", err)
	}
	if linked.Status != goLink.StatusLinked {
		t.Fatalf("expected linked, got %v (reason %v)", linked.Status, linked.Reason)
	}

	if n, err := rdb.Exists(ctx, "alk:owner-42").Result(); err != nil || n != 0 {
		t.Fatalf("expected checkpoint destroyed, exists=%d err=%v", n, err)
	}

	if _, err := engine.Follow(ctx, "carol_ig", "dest_ig"); err != nil {
		t.Fatalf("Follow over the redis-persisted session failed: %v", err)
	}
}
