package cookies

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"sync"
	"time"
)

var errNilHandle = errors.New("nil cookie handle")

// Handle owns the cookie jar for exactly one owner. It is created at the
// start of a linking flow and never shared between owners; the engine
// either persists it through a Store at flow completion or drops it.
//
// Handle implements http.CookieJar itself. Responses frequently set the
// session cookies without a Path attribute, which scopes them to the
// directory of whichever endpoint answered; the jar's path matching would
// then hide them from a lookup at the bare base URL. The handle therefore
// records every name/value it sees on the way into the jar, and Export
// reads that record instead of path-matching the jar.
type Handle struct {
	owner string
	base  *url.URL
	jar   *cookiejar.Jar

	mu   sync.Mutex
	seen map[string]string
}

type serializedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewHandle creates an empty jar scoped to baseURL for the given owner.
func NewHandle(owner, baseURL string) (*Handle, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Handle{owner: owner, base: base, jar: jar, seen: make(map[string]string)}, nil
}

// Owner returns the owner key the handle was created for.
func (h *Handle) Owner() string {
	if h == nil {
		return ""
	}
	return h.owner
}

// Jar exposes the handle for use as an http.Client cookie jar.
func (h *Handle) Jar() http.CookieJar {
	if h == nil {
		return nil
	}
	return h
}

// SetCookies records the cookies and forwards them to the underlying jar,
// which keeps serving requests with its usual domain and path matching.
func (h *Handle) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if h == nil || h.jar == nil {
		return
	}
	h.mu.Lock()
	for _, c := range cookies {
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(h.seen, c.Name)
			continue
		}
		h.seen[c.Name] = c.Value
	}
	h.mu.Unlock()
	h.jar.SetCookies(u, cookies)
}

// Cookies returns the cookies the underlying jar would send to u.
func (h *Handle) Cookies(u *url.URL) []*http.Cookie {
	if h == nil || h.jar == nil {
		return nil
	}
	return h.jar.Cookies(u)
}

// Export snapshots every cookie the handle has captured, in name order.
// The snapshot is what travels inside a pending checkpoint record so the
// verification call sees the cookies the login call captured.
func (h *Handle) Export() ([]byte, error) {
	if h == nil || h.jar == nil {
		return nil, errNilHandle
	}
	h.mu.Lock()
	out := make([]serializedCookie, 0, len(h.seen))
	for name, value := range h.seen {
		out = append(out, serializedCookie{Name: name, Value: value})
	}
	h.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return json.Marshal(out)
}

// Import restores a snapshot produced by Export. Restored cookies are set
// at the host root with Path "/" so they attach to every request the flow
// makes, whatever endpoint originally set them.
func (h *Handle) Import(data []byte) error {
	if h == nil || h.jar == nil {
		return errNilHandle
	}
	if len(data) == 0 {
		return nil
	}
	var stored []serializedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	restored := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		restored = append(restored, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	root := &url.URL{Scheme: h.base.Scheme, Host: h.base.Host, Path: "/"}
	h.SetCookies(root, restored)
	return nil
}
