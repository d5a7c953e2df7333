package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrEthical07/goLink/internal/challenge"
	"github.com/MrEthical07/goLink/internal/cookies"
	"github.com/MrEthical07/goLink/internal/device"
	"github.com/MrEthical07/goLink/internal/stores"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New failed: %v", err)
	}

	client, err := NewClient(Config{
		BaseURL:   server.URL,
		RetryBase: time.Millisecond,
	}, device.NewIdentity("alice_ig", device.Profile{}), jar)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, server
}

func TestClientSendsEmulationHeaders(t *testing.T) {
	identity := device.NewIdentity("alice_ig", device.Profile{})
	var got http.Header

	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":         "ok",
			"logged_in_user": map[string]any{"pk": 1, "username": "alice_ig"},
		})
	}))

	if _, err := client.Login(context.Background(), "alice_ig", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	checks := map[string]string{
		"User-Agent":           identity.UserAgent,
		"X-Ig-App-Id":          "567067343352427",
		"X-Ig-Device-Id":       identity.GUID,
		"X-Ig-Android-Id":      identity.AndroidID,
		"X-Csrftoken":          identity.CSRFToken,
		"X-Ig-Connection-Type": "WIFI",
	}
	for name, want := range checks {
		if got.Get(name) != want {
			t.Fatalf("header %s: got %q want %q", name, got.Get(name), want)
		}
	}
	if ct := got.Get("Content-Type"); ct != "application/x-www-form-urlencoded; charset=UTF-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestClientCapturesSessionCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "s1"})
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":         "ok",
			"logged_in_user": map[string]any{"pk": 1, "username": "alice_ig"},
		})
	}))
	t.Cleanup(server.Close)

	handle, err := cookies.NewHandle("owner-1", server.URL)
	if err != nil {
		t.Fatalf("NewHandle failed: %v", err)
	}
	client, err := NewClient(Config{
		BaseURL:   server.URL,
		RetryBase: time.Millisecond,
	}, device.NewIdentity("alice_ig", device.Profile{}), handle.Jar())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if _, err := client.Login(context.Background(), "alice_ig", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	snapshot, err := handle.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	var captured []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(snapshot, &captured); err != nil {
		t.Fatalf("snapshot not decodable: %v", err)
	}
	if len(captured) != 1 || captured[0].Name != "sessionid" || captured[0].Value != "s1" {
		t.Fatalf("expected captured session cookie, got %s", snapshot)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"user":   map[string]any{"pk": 1, "username": "alice_ig"},
		})
	}))

	if _, err := client.FetchProfile(context.Background()); err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestClientDoesNotRetryRejections(t *testing.T) {
	var calls int
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":     "fail",
			"message":    "bad credentials",
			"error_type": "bad_password",
		})
	}))

	_, err := client.Login(context.Background(), "alice_ig", "pw")
	rejection, ok := AsRejection(err)
	if !ok || rejection.Kind != RejectionBadPassword {
		t.Fatalf("expected bad-password rejection, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("rejection must not be retried, got %d calls", calls)
	}
}

func TestClientTransientExhaustion(t *testing.T) {
	var calls int
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.FetchProfile(context.Background())
	if !IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected initial call plus 2 retries, got %d", calls)
	}
}

func TestInitiateChallengeParsesContactPoint(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/challenge/select_verify_method/1784/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = r.ParseForm()
		if r.PostFormValue("choice") != "1" || r.PostFormValue("challenge_context") != "ctx" {
			t.Errorf("unexpected form %v", r.PostForm)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"step_name": "verify_email",
			"step_data": map[string]string{"contact_point": "a***e@example.com", "form_type": "email"},
		})
	}))

	state, err := client.InitiateChallenge(context.Background(), challenge.Descriptor{ID: "1784", Context: "ctx"})
	if err != nil {
		t.Fatalf("InitiateChallenge failed: %v", err)
	}
	if state.Channel != stores.ContactEmail || state.ContactMasked != "a***e@example.com" {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestVerifyChallengeSubmitsCode(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/challenge/1784/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = r.ParseForm()
		if r.PostFormValue("security_code") != "123456" {
			t.Errorf("unexpected form %v", r.PostForm)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))

	err := client.VerifyChallenge(context.Background(), challenge.Descriptor{ID: "1784", Context: "ctx"}, "123456")
	if err != nil {
		t.Fatalf("VerifyChallenge failed: %v", err)
	}
}

func TestDecodeRejectionTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   RejectionKind
	}{
		{"bad password by error type", 400, `{"status":"fail","error_type":"bad_password"}`, RejectionBadPassword},
		{"bad password by message", 400, `{"status":"fail","message":"The password you entered is incorrect."}`, RejectionBadPassword},
		{"invalid code", 400, `{"status":"fail","error_type":"invalid_code"}`, RejectionInvalidCode},
		{"challenge by message", 400, `{"status":"fail","message":"challenge_required"}`, RejectionCheckpoint},
		{"challenge by object", 400, `{"status":"fail","message":"x","challenge":{"url":"https://x/challenge/1/?challenge_context=c"}}`, RejectionCheckpoint},
		{"checkpoint url field", 400, `{"status":"fail","checkpoint_url":"https://x/challenge/1/?challenge_context=c"}`, RejectionCheckpoint},
		{"rate limited by message", 400, `{"status":"fail","message":"Please wait a few minutes before you try again."}`, RejectionRateLimited},
		{"rate limited by status", 429, `{"status":"fail","message":"slow down"}`, RejectionRateLimited},
		{"login required", 403, `{"status":"fail","message":"login_required"}`, RejectionLoginRequired},
		{"unknown", 400, `{"status":"fail","message":"something else"}`, RejectionUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := decodeRejection(tc.status, []byte(tc.body))
			rejection, ok := AsRejection(err)
			if !ok {
				t.Fatalf("expected rejection, got %v", err)
			}
			if rejection.Kind != tc.want {
				t.Fatalf("got kind %v want %v", rejection.Kind, tc.want)
			}
			if rejection.Kind == RejectionCheckpoint && rejection.ChallengeURL == "" && tc.name != "challenge by message" {
				t.Fatal("expected challenge url carried through")
			}
		})
	}
}

func TestDecodeRejectionServerErrorIsTransient(t *testing.T) {
	if err := decodeRejection(500, nil); !IsTransient(err) {
		t.Fatalf("expected transient for 5xx, got %v", err)
	}
}

func TestDecodeRejectionGarbageIsMalformed(t *testing.T) {
	err := decodeRejection(400, []byte("<html>not json</html>"))
	var malformed *MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}
