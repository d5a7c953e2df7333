package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	goLink "github.com/MrEthical07/goLink"
)

// Handler defines a public type used by goLink APIs.
//
// Handler instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Handler struct {
	engine *goLink.Engine
}

// NewHandler describes the newhandler operation and its observable behavior.
//
// NewHandler may return an error when input validation, dependency calls, or security checks fail.
// NewHandler does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHandler(engine *goLink.Engine) *Handler {
	return &Handler{engine: engine}
}

// Mux returns a ServeMux with the linking routes mounted. The caller wraps
// it with [RequireSession].
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /link", h.BeginLink)
	mux.HandleFunc("POST /link/verify", h.SubmitVerification)
	mux.HandleFunc("DELETE /link", h.CancelLink)
	mux.HandleFunc("POST /follow", h.Follow)
	return mux
}

type linkRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Code string `json:"code"`
}

type followRequest struct {
	Account string `json:"account"`
	Target  string `json:"target"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type linkedResponse struct {
	Status  string           `json:"status"`
	Account *accountResponse `json:"account,omitempty"`
}

type accountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type challengeResponse struct {
	Channel string `json:"channel"`
	Masked  string `json:"masked"`
}

// BeginLink describes the beginlink operation and its observable behavior.
//
// BeginLink may return an error when input validation, dependency calls, or security checks fail.
// BeginLink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Handler) BeginLink(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	result, err := h.engine.BeginLink(r.Context(), req.Username, req.Password, owner)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeResult(w, result)
}

// SubmitVerification describes the submitverification operation and its observable behavior.
//
// SubmitVerification may return an error when input validation, dependency calls, or security checks fail.
// SubmitVerification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Handler) SubmitVerification(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	result, err := h.engine.SubmitVerification(r.Context(), req.Code, owner)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeResult(w, result)
}

// CancelLink describes the cancellink operation and its observable behavior.
//
// CancelLink may return an error when input validation, dependency calls, or security checks fail.
// CancelLink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Handler) CancelLink(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.engine.CancelLink(r.Context(), owner); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Follow describes the follow operation and its observable behavior.
//
// Follow may return an error when input validation, dependency calls, or security checks fail.
// Follow does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The linked account to act as is named in the request body, not derived
// from the caller's session: the engine keys persisted sessions by linked
// username alone. Checking that the authenticated owner is entitled to
// that account is the embedding service's responsibility; mount this
// handler behind such a check when owners must not act on each other's
// links.
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	if _, ok := OwnerFromContext(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req followRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	record, err := h.engine.Follow(r.Context(), req.Account, req.Target)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"target_id":       record.TargetID,
		"target_username": record.TargetUsername,
		"followed_at":     record.FollowedAt,
	})
}

func writeResult(w http.ResponseWriter, result *goLink.LinkResult) {
	switch result.Status {
	case goLink.StatusLinked:
		writeJSON(w, http.StatusOK, linkedResponse{
			Status: "linked",
			Account: &accountResponse{
				ID:       result.Account.ExternalID,
				Username: result.Account.ExternalUsername,
			},
		})
	case goLink.StatusChallengeIssued:
		writeJSON(w, http.StatusForbidden, struct {
			Error     string             `json:"error"`
			Challenge *challengeResponse `json:"challenge"`
		}{
			Error: "checkpoint_required",
			Challenge: &challengeResponse{
				Channel: string(result.Challenge.ContactChannel),
				Masked:  result.Challenge.ContactMasked,
			},
		})
	default:
		writeFailure(w, result)
	}
}

func writeFailure(w http.ResponseWriter, result *goLink.LinkResult) {
	switch result.Reason {
	case goLink.ReasonInvalidCredentials:
		writeError(w, http.StatusUnauthorized, "invalid_credentials", result.Detail)
	case goLink.ReasonInvalidCode:
		writeError(w, http.StatusUnauthorized, "invalid_code", result.Detail)
	case goLink.ReasonNoPendingChallenge:
		writeError(w, http.StatusBadRequest, "no_pending_challenge", result.Detail)
	case goLink.ReasonAttemptsExceeded:
		writeError(w, http.StatusUnauthorized, "attempts_exceeded", result.Detail)
	case goLink.ReasonRateLimited:
		writeError(w, http.StatusTooManyRequests, "rate_limited", result.Detail)
	case goLink.ReasonMalformedChallenge, goLink.ReasonChallengeInitiationFailed:
		writeError(w, http.StatusInternalServerError, "challenge_setup_failed", result.Detail)
	default:
		writeError(w, http.StatusInternalServerError, "remote_error", result.Detail)
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, goLink.ErrCredentialsRequired):
		writeError(w, http.StatusBadRequest, "credentials_required", "")
	case errors.Is(err, goLink.ErrCodeRequired):
		writeError(w, http.StatusBadRequest, "code_required", "")
	case errors.Is(err, goLink.ErrOwnerKeyRequired):
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
	case errors.Is(err, goLink.ErrNotLinked):
		writeError(w, http.StatusConflict, "not_linked", "")
	case errors.Is(err, goLink.ErrSessionExpired):
		writeError(w, http.StatusConflict, "session_expired", "relink the account")
	case errors.Is(err, goLink.ErrTargetNotFound):
		writeError(w, http.StatusNotFound, "target_not_found", "")
	case errors.Is(err, goLink.ErrRemoteUnavailable):
		writeError(w, http.StatusBadGateway, "remote_unavailable", "")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Error: code, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
