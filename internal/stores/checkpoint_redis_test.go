package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*RedisCheckpointStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisCheckpointStore(rdb, ""), mr
}

func TestRedisStoreSaveGetDelete(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	record := testCheckpoint(time.Now().Add(15 * time.Minute).Unix())
	if err := store.Save(ctx, "owner-1", record, 15*time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !mr.Exists("alk:owner-1") {
		t.Fatal("expected record under the default alk prefix")
	}
	if ttl := mr.TTL("alk:owner-1"); ttl <= 0 || ttl > 15*time.Minute {
		t.Fatalf("unexpected key TTL %v", ttl)
	}

	got, err := store.Get(ctx, "owner-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Username != record.Username || got.ChallengeID != record.ChallengeID {
		t.Fatalf("unexpected record %+v", got)
	}

	deleted, err := store.Delete(ctx, "owner-1")
	if err != nil || !deleted {
		t.Fatalf("Delete: deleted=%v err=%v", deleted, err)
	}
	if _, err := store.Get(ctx, "owner-1"); !errors.Is(err, ErrCheckpointNotFound) {
		t.Fatalf("expected ErrCheckpointNotFound, got %v", err)
	}
}

func TestRedisStoreSaveOverwrites(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	first := testCheckpoint(time.Now().Add(15 * time.Minute).Unix())
	first.Attempts = 3
	if err := store.Save(ctx, "owner-1", first, 15*time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := testCheckpoint(time.Now().Add(15 * time.Minute).Unix())
	second.Attempts = 0
	second.ChallengeID = "9999"
	if err := store.Save(ctx, "owner-1", second, 15*time.Minute); err != nil {
		t.Fatalf("overwrite Save failed: %v", err)
	}

	got, err := store.Get(ctx, "owner-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ChallengeID != "9999" || got.Attempts != 0 {
		t.Fatalf("expected replacement record, got %+v", got)
	}
}

func TestRedisStoreEmbeddedDeadlineEnforced(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	// Key TTL is generous but the embedded deadline already passed, as a
	// restored or replicated key might look.
	record := testCheckpoint(time.Now().Add(-time.Second).Unix())
	if err := store.Save(ctx, "owner-1", record, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := store.Get(ctx, "owner-1"); !errors.Is(err, ErrCheckpointExpired) {
		t.Fatalf("expected ErrCheckpointExpired, got %v", err)
	}
	if mr.Exists("alk:owner-1") {
		t.Fatal("expected expired key to be deleted on Get")
	}
}

func TestRedisStoreKeyExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	record := testCheckpoint(time.Now().Add(15 * time.Minute).Unix())
	if err := store.Save(ctx, "owner-1", record, 15*time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.FastForward(16 * time.Minute)

	if _, err := store.Get(ctx, "owner-1"); !errors.Is(err, ErrCheckpointNotFound) {
		t.Fatalf("expected ErrCheckpointNotFound after TTL lapse, got %v", err)
	}
}

func TestRedisStoreRecordFailure(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	record := testCheckpoint(time.Now().Add(15 * time.Minute).Unix())
	record.Attempts = 0
	if err := store.Save(ctx, "owner-1", record, 15*time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	ttlBefore := mr.TTL("alk:owner-1")

	exceeded, err := store.RecordFailure(ctx, "owner-1", 3)
	if err != nil || exceeded {
		t.Fatalf("first failure: exceeded=%v err=%v", exceeded, err)
	}
	if ttlAfter := mr.TTL("alk:owner-1"); ttlAfter > ttlBefore {
		t.Fatalf("expected TTL not extended, before=%v after=%v", ttlBefore, ttlAfter)
	}

	got, err := store.Get(ctx, "owner-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Attempts != 1 {
		t.Fatalf("expected attempts=1, got %d", got.Attempts)
	}

	if exceeded, err = store.RecordFailure(ctx, "owner-1", 3); err != nil || exceeded {
		t.Fatalf("second failure: exceeded=%v err=%v", exceeded, err)
	}
	if exceeded, err = store.RecordFailure(ctx, "owner-1", 3); err != nil || !exceeded {
		t.Fatalf("third failure should hit the cap: exceeded=%v err=%v", exceeded, err)
	}
	if mr.Exists("alk:owner-1") {
		t.Fatal("expected record destroyed at the cap")
	}

	if _, err := store.RecordFailure(ctx, "owner-1", 3); !errors.Is(err, ErrCheckpointNotFound) {
		t.Fatalf("expected ErrCheckpointNotFound, got %v", err)
	}
}

func TestRedisStoreCustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewRedisCheckpointStore(rdb, "custom")
	ctx := context.Background()

	record := testCheckpoint(time.Now().Add(time.Minute).Unix())
	if err := store.Save(ctx, "owner-1", record, time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !mr.Exists("custom:owner-1") {
		t.Fatal("expected record under the custom prefix")
	}
}
