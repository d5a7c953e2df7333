package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goLink/internal/device"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 2
	defaultRetryBase  = 250 * time.Millisecond

	appID          = "567067343352427"
	acceptLanguage = "en-US"
	capabilities   = "3brTvx0="
)

// Config carries the transport-level settings for one client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryBase  time.Duration

	// Transport overrides the underlying round tripper; tests point it at
	// a stub server.
	Transport http.RoundTripper
}

// Client issues emulated mobile-app calls against the remote platform. A
// client binds exactly one device identity and one cookie jar for its
// lifetime; it is rebuilt, never mutated, when a flow resumes.
type Client struct {
	cfg      Config
	base     *url.URL
	identity device.Identity
	http     *http.Client
}

// NewClient builds a client for the identity using jar for cookie
// attachment and capture.
func NewClient(cfg Config, identity device.Identity, jar http.CookieJar) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("remote base url required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = defaultRetryBase
	}

	return &Client{
		cfg:      cfg,
		base:     base,
		identity: identity,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Jar:       jar,
			Transport: cfg.Transport,
		},
	}, nil
}

// Identity returns the device identity the client presents.
func (c *Client) Identity() device.Identity {
	return c.identity
}

// do issues one API call with emulation headers and bounded retries.
// Connectivity failures and 5xx responses are retried with exponential
// backoff; any decoded rejection is returned immediately.
func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	target := c.base.JoinPath(path).String()

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.RetryBase << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return &TransientError{Err: ctx.Err()}
			}
		}

		err := c.once(ctx, method, target, form, out)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (c *Client) once(ctx context.Context, method, target string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &MalformedError{Err: err}
	}
	c.setHeaders(req, form != nil)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &TransientError{Err: ctx.Err()}
		}
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &TransientError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeRejection(resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &MalformedError{Err: err}
	}
	return nil
}

// setHeaders attaches the fixed emulation headers plus the device
// identity. Cookies ride on the jar, not here.
func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("User-Agent", c.identity.UserAgent)
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("X-IG-App-ID", appID)
	req.Header.Set("X-IG-Capabilities", capabilities)
	req.Header.Set("X-IG-Device-ID", c.identity.GUID)
	req.Header.Set("X-IG-Android-ID", c.identity.AndroidID)
	req.Header.Set("X-CSRFToken", c.identity.CSRFToken)
	req.Header.Set("X-IG-Connection-Type", "WIFI")
	if hasBody {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
}
