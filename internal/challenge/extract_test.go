package challenge

import (
	"errors"
	"testing"
)

func TestParseAbsoluteURL(t *testing.T) {
	desc, err := Parse("https://i.instagram.com/challenge/1784/AbCdEf/?challenge_context=ctx-blob")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if desc.ID != "1784" {
		t.Fatalf("expected id 1784, got %q", desc.ID)
	}
	if desc.Context != "ctx-blob" {
		t.Fatalf("expected context ctx-blob, got %q", desc.Context)
	}
}

func TestParseBarePath(t *testing.T) {
	desc, err := Parse("/challenge/9021/XyZ/?challenge_context=c2")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if desc.ID != "9021" || desc.Context != "c2" {
		t.Fatalf("unexpected descriptor %+v", desc)
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"no challenge segment", "https://i.instagram.com/accounts/login/?challenge_context=c"},
		{"challenge is last segment", "https://i.instagram.com/challenge/?challenge_context=c"},
		{"missing context", "https://i.instagram.com/challenge/1784/AbCdEf/"},
		{"unparseable url", "http://bad url/challenge/1/?challenge_context=c"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.raw); !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestDescriptorPath(t *testing.T) {
	desc := Descriptor{ID: "1784", Context: "c"}
	if got := desc.Path(); got != "/challenge/1784/" {
		t.Fatalf("unexpected path %q", got)
	}
}
