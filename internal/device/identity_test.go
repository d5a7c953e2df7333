package device

import (
	"strings"
	"testing"
)

func TestNewIdentityIsDeterministic(t *testing.T) {
	a := NewIdentity("alice_ig", Profile{})
	b := NewIdentity("alice_ig", Profile{})

	if a != b {
		t.Fatalf("identity not stable for the same seed:\n%+v\n%+v", a, b)
	}
	if a.IsZero() {
		t.Fatal("expected populated identity")
	}
}

func TestNewIdentityVariesPerSeed(t *testing.T) {
	a := NewIdentity("alice_ig", Profile{})
	b := NewIdentity("bob_ig", Profile{})

	if a.AndroidID == b.AndroidID || a.GUID == b.GUID || a.PhoneID == b.PhoneID {
		t.Fatalf("identities collide across seeds:\n%+v\n%+v", a, b)
	}
}

func TestIdentityFieldShapes(t *testing.T) {
	id := NewIdentity("alice_ig", Profile{})

	if !strings.HasPrefix(id.AndroidID, "android-") || len(id.AndroidID) != len("android-")+16 {
		t.Fatalf("unexpected android id %q", id.AndroidID)
	}
	for _, u := range []string{id.GUID, id.PhoneID, id.AdID} {
		if len(u) != 36 || strings.Count(u, "-") != 4 {
			t.Fatalf("expected uuid shape, got %q", u)
		}
	}
	if id.CSRFToken == "" {
		t.Fatal("expected csrf token")
	}
	if !strings.HasPrefix(id.UserAgent, "Instagram ") || !strings.Contains(id.UserAgent, "Android") {
		t.Fatalf("unexpected user agent %q", id.UserAgent)
	}
}

func TestEmptyProfileFallsBackToDefault(t *testing.T) {
	id := NewIdentity("alice_ig", Profile{})
	if id.UserAgent != DefaultProfile.UserAgent() {
		t.Fatalf("expected default profile user agent, got %q", id.UserAgent)
	}
}
