package goLink

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventLinkSuccess         = "link_success"
	auditEventLinkFailure         = "link_failure"
	auditEventChallengeIssued     = "challenge_issued"
	auditEventChallengeSetupError = "challenge_setup_failed"
	auditEventVerifySuccess       = "verify_success"
	auditEventVerifyFailure       = "verify_failure"
	auditEventVerifyNoPending     = "verify_no_pending"
	auditEventCheckpointCancelled = "checkpoint_cancelled"
	auditEventCheckpointSwept     = "checkpoint_swept"
	auditEventFollowSuccess       = "follow_success"
	auditEventFollowFailure       = "follow_failure"
)

// AuditErrorCode defines a public type used by goLink APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrInvalidCode        AuditErrorCode = "invalid_code"
	auditErrNoPendingChallenge AuditErrorCode = "no_pending_challenge"
	auditErrMalformedChallenge AuditErrorCode = "malformed_challenge"
	auditErrChallengeSetup     AuditErrorCode = "challenge_setup_failed"
	auditErrAttemptsExceeded   AuditErrorCode = "attempts_exceeded"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrNotLinked          AuditErrorCode = "not_linked"
	auditErrSessionExpired     AuditErrorCode = "session_expired"
	auditErrTargetNotFound     AuditErrorCode = "target_not_found"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrRemote             AuditErrorCode = "remote_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	owner string,
	externalUsername string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	metadata = withCallerAgent(ctx, metadata)

	event := AuditEvent{
		Timestamp:        time.Now().UTC(),
		EventType:        eventType,
		Owner:            owner,
		ExternalUsername: externalUsername,
		IP:               clientIPFromContext(ctx),
		Success:          success,
		Metadata:         metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

// emitFailure records a StatusFailed result under eventType with the
// reason encoded the way error-carrying events encode their codes.
func (e *Engine) emitFailure(
	ctx context.Context,
	eventType string,
	owner string,
	externalUsername string,
	reason FailReason,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	metadata = withCallerAgent(ctx, metadata)

	event := AuditEvent{
		Timestamp:        time.Now().UTC(),
		EventType:        eventType,
		Owner:            owner,
		ExternalUsername: externalUsername,
		IP:               clientIPFromContext(ctx),
		Success:          false,
		Error:            string(auditReasonCode(reason)),
		Metadata:         metadata,
	}

	e.audit.Emit(ctx, event)
}

// withCallerAgent records the caller's own User-Agent, when the caller
// attached one, alongside whatever metadata the event already carries.
func withCallerAgent(ctx context.Context, metadata map[string]string) map[string]string {
	userAgent := userAgentFromContext(ctx)
	if userAgent == "" {
		return metadata
	}
	if metadata == nil {
		metadata = make(map[string]string, 1)
	}
	metadata["caller_user_agent"] = userAgent
	return metadata
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrCredentialsRequired):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrCodeRequired):
		return auditErrInvalidCode
	case errors.Is(err, ErrNotLinked):
		return auditErrNotLinked
	case errors.Is(err, ErrSessionExpired):
		return auditErrSessionExpired
	case errors.Is(err, ErrTargetNotFound):
		return auditErrTargetNotFound
	case errors.Is(err, ErrCheckpointUnavailable),
		errors.Is(err, ErrCookieStoreUnavailable),
		errors.Is(err, ErrAccountStoreUnavailable),
		errors.Is(err, ErrEngineNotReady):
		return auditErrUnavailable
	default:
		return auditErrRemote
	}
}

func auditReasonCode(reason FailReason) AuditErrorCode {
	switch reason {
	case ReasonInvalidCredentials:
		return auditErrInvalidCredentials
	case ReasonInvalidCode:
		return auditErrInvalidCode
	case ReasonNoPendingChallenge:
		return auditErrNoPendingChallenge
	case ReasonMalformedChallenge:
		return auditErrMalformedChallenge
	case ReasonChallengeInitiationFailed:
		return auditErrChallengeSetup
	case ReasonAttemptsExceeded:
		return auditErrAttemptsExceeded
	case ReasonRateLimited:
		return auditErrRateLimited
	case ReasonRemoteError:
		return auditErrRemote
	default:
		return ""
	}
}
