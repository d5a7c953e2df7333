package goLink

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/MrEthical07/goLink/internal/challenge"
	"github.com/MrEthical07/goLink/internal/remote"
	"github.com/MrEthical07/goLink/internal/stores"
)

// SubmitVerification describes the submitverification operation and its observable behavior.
//
// SubmitVerification may return an error when input validation, dependency calls, or security checks fail.
// SubmitVerification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SubmitVerification(ctx context.Context, code, ownerSessionKey string) (*LinkResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if ownerSessionKey == "" {
		return nil, ErrOwnerKeyRequired
	}
	if code == "" {
		return nil, ErrCodeRequired
	}

	record, err := e.checkpoints.Get(ctx, ownerSessionKey)
	if err != nil {
		if errors.Is(err, stores.ErrCheckpointNotFound) || errors.Is(err, stores.ErrCheckpointExpired) {
			e.metricInc(MetricVerifyNoPending)
			e.emitFailure(ctx, auditEventVerifyNoPending, ownerSessionKey, "", ReasonNoPendingChallenge, nil)
			return failResult(ReasonNoPendingChallenge, "no verification in progress"), nil
		}
		return nil, ErrCheckpointUnavailable
	}
	defer record.Wipe()

	client, handle, err := e.newFlowClient(ownerSessionKey, record.DeviceSeed)
	if err != nil {
		return nil, err
	}
	if err := handle.Import(record.Cookies); err != nil {
		return nil, ErrCookieStoreUnavailable
	}

	desc := challenge.Descriptor{ID: record.ChallengeID, Context: record.ChallengeContext}
	if verr := client.VerifyChallenge(ctx, desc, code); verr != nil {
		return e.resolveVerifyFailure(ctx, ownerSessionKey, record.Username, verr)
	}

	// Code accepted. Resume the original login with the stored secret on
	// the same device identity and cookie state the remote saw earlier.
	start := time.Now()
	profile, lerr := client.Login(ctx, record.Username, string(record.Secret))
	e.metrics.Observe(MetricLoginLatency, time.Since(start))

	if lerr != nil {
		if rejection, ok := remote.AsRejection(lerr); ok && rejection.Kind == remote.RejectionCheckpoint {
			// The remote raised a fresh checkpoint on resume. Its
			// record replaces the one we just consumed.
			return e.issueChallenge(ctx, ownerSessionKey, record.Username, string(record.Secret), rejection.ChallengeURL, client, handle)
		}
		e.metricInc(MetricLinkRemoteError)
		e.emitFailure(ctx, auditEventVerifyFailure, ownerSessionKey, record.Username, ReasonRemoteError, nil)
		return failResult(ReasonRemoteError, "the remote service rejected the resumed login"), nil
	}

	if _, derr := e.checkpoints.Delete(ctx, ownerSessionKey); derr != nil {
		log.Print("goLink: checkpoint delete failed after verification, record will lapse at its deadline")
	}

	e.metricInc(MetricVerifySuccess)
	e.emitAudit(ctx, auditEventVerifySuccess, true, ownerSessionKey, record.Username, nil, nil)

	return e.completeLink(ctx, ownerSessionKey, profile, handle)
}

// resolveVerifyFailure classifies a rejected code submission. Invalid
// codes count against the checkpoint's attempt budget; the checkpoint and
// its deadline are otherwise left untouched.
func (e *Engine) resolveVerifyFailure(
	ctx context.Context,
	owner string,
	username string,
	err error,
) (*LinkResult, error) {
	rejection, ok := remote.AsRejection(err)
	if !ok {
		e.metricInc(MetricLinkRemoteError)
		e.emitFailure(ctx, auditEventVerifyFailure, owner, username, ReasonRemoteError, nil)
		return failResult(ReasonRemoteError, "the remote service did not respond"), nil
	}

	switch rejection.Kind {
	case remote.RejectionInvalidCode:
		exceeded, rerr := e.checkpoints.RecordFailure(ctx, owner, e.config.Checkpoint.MaxAttempts)
		if rerr != nil {
			if errors.Is(rerr, stores.ErrCheckpointNotFound) || errors.Is(rerr, stores.ErrCheckpointExpired) {
				e.metricInc(MetricVerifyNoPending)
				e.emitFailure(ctx, auditEventVerifyNoPending, owner, username, ReasonNoPendingChallenge, nil)
				return failResult(ReasonNoPendingChallenge, "no verification in progress"), nil
			}
			return nil, ErrCheckpointUnavailable
		}
		if exceeded {
			e.metricInc(MetricVerifyAttemptsExceeded)
			e.emitFailure(ctx, auditEventVerifyFailure, owner, username, ReasonAttemptsExceeded, nil)
			return failResult(ReasonAttemptsExceeded, "too many invalid codes, start over"), nil
		}
		e.metricInc(MetricVerifyInvalidCode)
		e.emitFailure(ctx, auditEventVerifyFailure, owner, username, ReasonInvalidCode, nil)
		return failResult(ReasonInvalidCode, "the code was not accepted"), nil
	case remote.RejectionRateLimited:
		e.metricInc(MetricLinkRateLimited)
		e.emitFailure(ctx, auditEventVerifyFailure, owner, username, ReasonRateLimited, nil)
		return failResult(ReasonRateLimited, "too many attempts, wait before retrying"), nil
	default:
		e.metricInc(MetricLinkRemoteError)
		e.emitFailure(ctx, auditEventVerifyFailure, owner, username, ReasonRemoteError, func() map[string]string {
			return map[string]string{"remote_message": rejection.Message}
		})
		return failResult(ReasonRemoteError, rejection.Message), nil
	}
}

// CancelLink describes the cancellink operation and its observable behavior.
//
// CancelLink may return an error when input validation, dependency calls, or security checks fail.
// CancelLink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CancelLink(ctx context.Context, ownerSessionKey string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if ownerSessionKey == "" {
		return ErrOwnerKeyRequired
	}

	deleted, err := e.checkpoints.Delete(ctx, ownerSessionKey)
	if err != nil {
		return ErrCheckpointUnavailable
	}
	if deleted {
		e.metricInc(MetricCheckpointCancelled)
		e.emitAudit(ctx, auditEventCheckpointCancelled, true, ownerSessionKey, "", nil, nil)
	}
	return nil
}
