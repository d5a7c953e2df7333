package goLink

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/MrEthical07/goLink/internal/cookies"
	"github.com/MrEthical07/goLink/internal/remote"
)

// Follow describes the follow operation and its observable behavior.
//
// Follow may return an error when input validation, dependency calls, or security checks fail.
// Follow does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Follow(ctx context.Context, externalUsername, targetUsername string) (*FollowRecord, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if externalUsername == "" {
		return nil, ErrNotLinked
	}
	if targetUsername == "" {
		return nil, ErrTargetNotFound
	}

	client, handle, err := e.sessionClient(ctx, externalUsername)
	if err != nil {
		return nil, err
	}

	target, err := client.FindAccountByName(ctx, targetUsername)
	if err != nil {
		mapped := e.mapSessionError(ctx, externalUsername, err)
		e.metricInc(MetricFollowFailure)
		e.emitAudit(ctx, auditEventFollowFailure, false, "", externalUsername, mapped, func() map[string]string {
			return map[string]string{"target": targetUsername}
		})
		return nil, mapped
	}

	if err := client.Follow(ctx, target.ID); err != nil {
		mapped := e.mapSessionError(ctx, externalUsername, err)
		e.metricInc(MetricFollowFailure)
		e.emitAudit(ctx, auditEventFollowFailure, false, "", externalUsername, mapped, func() map[string]string {
			return map[string]string{"target": targetUsername}
		})
		return nil, mapped
	}

	e.refreshSnapshot(ctx, externalUsername, handle)
	e.metricInc(MetricFollowSuccess)
	e.emitAudit(ctx, auditEventFollowSuccess, true, "", externalUsername, nil, func() map[string]string {
		return map[string]string{"target": target.Username}
	})

	return &FollowRecord{
		TargetID:       target.ID,
		TargetUsername: target.Username,
		FollowedAt:     time.Now().UTC(),
	}, nil
}

// Profile describes the profile operation and its observable behavior.
//
// Profile may return an error when input validation, dependency calls, or security checks fail.
// Profile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Profile(ctx context.Context, externalUsername string) (*RemoteProfile, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if externalUsername == "" {
		return nil, ErrNotLinked
	}

	client, handle, err := e.sessionClient(ctx, externalUsername)
	if err != nil {
		return nil, err
	}

	profile, err := client.FetchProfile(ctx)
	if err != nil {
		return nil, e.mapSessionError(ctx, externalUsername, err)
	}

	e.refreshSnapshot(ctx, externalUsername, handle)

	return &RemoteProfile{
		ExternalID:       profile.ID,
		ExternalUsername: profile.Username,
		FullName:         profile.FullName,
		Private:          profile.IsPrivate,
	}, nil
}

// sessionClient rebuilds a client for a linked account from its persisted
// cookie snapshot and its deterministic device identity.
func (e *Engine) sessionClient(ctx context.Context, externalUsername string) (*remote.Client, *cookies.Handle, error) {
	snapshot, err := e.cookies.Restore(ctx, sessionOwner(externalUsername))
	if err != nil {
		if errors.Is(err, cookies.ErrNoSnapshot) {
			return nil, nil, ErrNotLinked
		}
		return nil, nil, ErrCookieStoreUnavailable
	}

	client, handle, err := e.newFlowClient(sessionOwner(externalUsername), externalUsername)
	if err != nil {
		return nil, nil, err
	}
	if err := handle.Import(snapshot); err != nil {
		return nil, nil, ErrCookieStoreUnavailable
	}
	return client, handle, nil
}

// mapSessionError converts a remote failure on a linked-account call into
// the engine's sentinel space. A login_required or checkpoint rejection
// means the persisted session is no longer usable, so its snapshot is
// dropped and the account must be relinked.
func (e *Engine) mapSessionError(ctx context.Context, externalUsername string, err error) error {
	if rejection, ok := remote.AsRejection(err); ok {
		switch {
		case rejection.Kind == remote.RejectionLoginRequired || rejection.Kind == remote.RejectionCheckpoint:
			if derr := e.cookies.Drop(ctx, sessionOwner(externalUsername)); derr != nil {
				log.Print("goLink: stale session snapshot drop failed")
			}
			return ErrSessionExpired
		case rejection.Kind == remote.RejectionRateLimited:
			return fmt.Errorf("%w: rate limited", ErrRemoteUnavailable)
		case rejection.StatusCode == http.StatusNotFound:
			return ErrTargetNotFound
		default:
			return fmt.Errorf("%w: %s", ErrRemoteUnavailable, rejection.Message)
		}
	}
	return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
}

// refreshSnapshot re-persists the cookie state after a successful call so
// rotated session cookies survive for the next one. Best effort.
func (e *Engine) refreshSnapshot(ctx context.Context, externalUsername string, handle *cookies.Handle) {
	snapshot, err := handle.Export()
	if err != nil {
		return
	}
	if err := e.cookies.Persist(ctx, sessionOwner(externalUsername), snapshot); err != nil {
		log.Print("goLink: session snapshot refresh failed")
	}
}
