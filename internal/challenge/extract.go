package challenge

import (
	"errors"
	"net/url"
	"strings"
)

// ErrMalformed is returned by Parse when a challenge URL does not carry
// both the challenge id and the challenge context.
var ErrMalformed = errors.New("malformed challenge url")

// Descriptor identifies one remote security challenge. The id names the
// challenge on the remote side; the context is an opaque blob the remote
// service requires to be echoed back on every challenge sub-call.
type Descriptor struct {
	ID      string
	Context string
}

// Parse extracts a Descriptor from the challenge URL embedded in a
// checkpoint-required login rejection. It accepts absolute URLs and bare
// paths. The id is the path segment following "challenge"; the context is
// the challenge_context query parameter.
func Parse(raw string) (Descriptor, error) {
	if strings.TrimSpace(raw) == "" {
		return Descriptor{}, ErrMalformed
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Descriptor{}, ErrMalformed
	}

	id := idFromPath(u.Path)
	if id == "" {
		return Descriptor{}, ErrMalformed
	}

	context := u.Query().Get("challenge_context")
	if context == "" {
		return Descriptor{}, ErrMalformed
	}

	return Descriptor{ID: id, Context: context}, nil
}

func idFromPath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		if segment != "challenge" {
			continue
		}
		if i+1 >= len(segments) {
			return ""
		}
		return segments[i+1]
	}
	return ""
}

// Path returns the canonical challenge API path for the descriptor.
func (d Descriptor) Path() string {
	return "/challenge/" + d.ID + "/"
}
