package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// RejectionKind tags a structured remote rejection. The remote service
// overloads HTTP status codes across these cases, so callers branch on the
// kind decoded from the body, never on the status alone.
type RejectionKind int

const (
	RejectionUnknown RejectionKind = iota
	RejectionBadPassword
	RejectionCheckpoint
	RejectionInvalidCode
	RejectionRateLimited
	RejectionLoginRequired
)

// Rejection is a normalized remote rejection. It is never retried.
type Rejection struct {
	Kind         RejectionKind
	StatusCode   int
	Message      string
	ChallengeURL string
}

func (r *Rejection) Error() string {
	if r.Message != "" {
		return fmt.Sprintf("remote rejection (%d): %s", r.StatusCode, r.Message)
	}
	return fmt.Sprintf("remote rejection (%d)", r.StatusCode)
}

// TransientError wraps a connectivity-level failure that is eligible for
// caller-level retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient remote failure: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// MalformedError marks a response body that could not be decoded. It is
// fatal for the attempt.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string {
	return "malformed remote response: " + e.Err.Error()
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// AsRejection extracts the structured rejection from err, if any.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// IsTransient reports whether err is a connectivity-level failure.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

type apiErrorBody struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	ErrorType     string `json:"error_type"`
	CheckpointURL string `json:"checkpoint_url"`
	Challenge     *struct {
		URL     string `json:"url"`
		APIPath string `json:"api_path"`
	} `json:"challenge"`
}

// decodeRejection pattern-matches a non-2xx response body into the
// rejection taxonomy. The mapping is field-first: explicit error_type and
// message values win over status codes.
func decodeRejection(statusCode int, body []byte) error {
	if statusCode >= http.StatusInternalServerError {
		return &TransientError{Err: fmt.Errorf("remote returned status %d", statusCode)}
	}

	var decoded apiErrorBody
	if err := json.Unmarshal(body, &decoded); err != nil {
		return &MalformedError{Err: fmt.Errorf("status %d: %v", statusCode, err)}
	}

	rejection := &Rejection{
		Kind:       RejectionUnknown,
		StatusCode: statusCode,
		Message:    decoded.Message,
	}

	message := strings.ToLower(decoded.Message)
	switch {
	case decoded.ErrorType == "bad_password",
		strings.Contains(message, "password you entered is incorrect"):
		rejection.Kind = RejectionBadPassword

	case decoded.ErrorType == "invalid_code",
		strings.Contains(message, "check the code we sent you"):
		rejection.Kind = RejectionInvalidCode

	case message == "challenge_required", message == "checkpoint_required",
		decoded.Challenge != nil, decoded.CheckpointURL != "":
		rejection.Kind = RejectionCheckpoint
		if decoded.Challenge != nil {
			rejection.ChallengeURL = decoded.Challenge.URL
		}
		if rejection.ChallengeURL == "" {
			rejection.ChallengeURL = decoded.CheckpointURL
		}

	case decoded.ErrorType == "rate_limit_error",
		message == "rate_limited",
		strings.Contains(message, "please wait a few minutes"),
		statusCode == http.StatusTooManyRequests:
		rejection.Kind = RejectionRateLimited

	case message == "login_required":
		rejection.Kind = RejectionLoginRequired
	}

	return rejection
}
