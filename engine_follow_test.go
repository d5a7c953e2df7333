package goLink

import (
	"context"
	"errors"
	"testing"
)

func linkTestAccount(t *testing.T, engine *Engine, platform *fakePlatform, owner string) {
	t.Helper()

	platform.mu.Lock()
	platform.verified = true
	platform.mu.Unlock()

	result, err := engine.BeginLink(context.Background(), "alice_ig", "correct-horse", owner)
	if err != nil {
		t.Fatalf("BeginLink failed: %v", err)
	}
	if result.Status != StatusLinked {
		t.Fatalf("expected StatusLinked, got %+v", result)
	}
}

func TestFollowWithLinkedSession(t *testing.T) {
	engine, platform, _, _, _ := newLinkEngine(t, nil)
	linkTestAccount(t, engine, platform, "owner-1")

	record, err := engine.Follow(context.Background(), "alice_ig", "golang")
	if err != nil {
		t.Fatalf("Follow failed: %v", err)
	}
	if record.TargetID != 42 || record.TargetUsername != "golang" {
		t.Fatalf("unexpected follow record %+v", record)
	}
	if record.FollowedAt.IsZero() {
		t.Fatal("expected FollowedAt to be set")
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricFollowSuccess] != 1 {
		t.Fatalf("expected follow success counted, got %+v", snap.Counters)
	}
}

func TestFollowWithoutLink(t *testing.T) {
	engine, _, _, _, _ := newLinkEngine(t, nil)

	if _, err := engine.Follow(context.Background(), "alice_ig", "golang"); !errors.Is(err, ErrNotLinked) {
		t.Fatalf("expected ErrNotLinked, got %v", err)
	}
}

func TestFollowTargetNotFound(t *testing.T) {
	engine, platform, _, _, _ := newLinkEngine(t, nil)
	linkTestAccount(t, engine, platform, "owner-1")

	if _, err := engine.Follow(context.Background(), "alice_ig", "ghost"); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
}

func TestFollowExpiredSessionDropsSnapshot(t *testing.T) {
	engine, platform, _, _, _ := newLinkEngine(t, nil)
	linkTestAccount(t, engine, platform, "owner-1")

	platform.mu.Lock()
	platform.sessionRevoked = true
	platform.mu.Unlock()

	if _, err := engine.Follow(context.Background(), "alice_ig", "golang"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	// The stale snapshot is gone: the next attempt fails earlier.
	if _, err := engine.Follow(context.Background(), "alice_ig", "golang"); !errors.Is(err, ErrNotLinked) {
		t.Fatalf("expected ErrNotLinked after snapshot drop, got %v", err)
	}
}

func TestProfileWithLinkedSession(t *testing.T) {
	engine, platform, _, _, _ := newLinkEngine(t, nil)
	linkTestAccount(t, engine, platform, "owner-1")

	profile, err := engine.Profile(context.Background(), "alice_ig")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.ExternalID != 7 || profile.ExternalUsername != "alice_ig" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestProfileWithoutLink(t *testing.T) {
	engine, _, _, _, _ := newLinkEngine(t, nil)

	if _, err := engine.Profile(context.Background(), "alice_ig"); !errors.Is(err, ErrNotLinked) {
		t.Fatalf("expected ErrNotLinked, got %v", err)
	}
}

func TestSessionsAreIsolatedPerAccount(t *testing.T) {
	engine, platform, _, _, _ := newLinkEngine(t, nil)
	linkTestAccount(t, engine, platform, "owner-1")

	// A different account name has no snapshot even though another link
	// exists in the same store.
	if _, err := engine.Follow(context.Background(), "bob_ig", "golang"); !errors.Is(err, ErrNotLinked) {
		t.Fatalf("expected ErrNotLinked for unlinked account, got %v", err)
	}

	if _, err := engine.Follow(context.Background(), "alice_ig", "golang"); err != nil {
		t.Fatalf("linked account must stay usable: %v", err)
	}
}
