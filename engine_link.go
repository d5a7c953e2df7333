package goLink

import (
	"context"
	"log"
	"time"

	"github.com/MrEthical07/goLink/internal/challenge"
	"github.com/MrEthical07/goLink/internal/cookies"
	"github.com/MrEthical07/goLink/internal/remote"
	"github.com/MrEthical07/goLink/internal/stores"
)

// BeginLink describes the beginlink operation and its observable behavior.
//
// BeginLink may return an error when input validation, dependency calls, or security checks fail.
// BeginLink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) BeginLink(ctx context.Context, username, secret, ownerSessionKey string) (*LinkResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if ownerSessionKey == "" {
		return nil, ErrOwnerKeyRequired
	}
	if username == "" || secret == "" {
		return nil, ErrCredentialsRequired
	}

	client, handle, err := e.newFlowClient(ownerSessionKey, username)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	profile, err := client.Login(ctx, username, secret)
	e.metrics.Observe(MetricLoginLatency, time.Since(start))

	if err != nil {
		return e.resolveLoginFailure(ctx, ownerSessionKey, username, secret, err, client, handle)
	}
	return e.completeLink(ctx, ownerSessionKey, profile, handle)
}

// resolveLoginFailure classifies a credentialed login failure. Checkpoint
// rejections fork into the challenge path; everything else terminates the
// attempt without writing any state.
func (e *Engine) resolveLoginFailure(
	ctx context.Context,
	owner string,
	username string,
	secret string,
	err error,
	client *remote.Client,
	handle *cookies.Handle,
) (*LinkResult, error) {
	rejection, ok := remote.AsRejection(err)
	if !ok {
		e.metricInc(MetricLinkRemoteError)
		e.emitFailure(ctx, auditEventLinkFailure, owner, username, ReasonRemoteError, nil)
		return failResult(ReasonRemoteError, "the remote service did not respond"), nil
	}

	switch rejection.Kind {
	case remote.RejectionBadPassword:
		e.metricInc(MetricLinkInvalidCredentials)
		e.emitFailure(ctx, auditEventLinkFailure, owner, username, ReasonInvalidCredentials, nil)
		return failResult(ReasonInvalidCredentials, "the username or password was not accepted"), nil
	case remote.RejectionCheckpoint:
		return e.issueChallenge(ctx, owner, username, secret, rejection.ChallengeURL, client, handle)
	case remote.RejectionRateLimited:
		e.metricInc(MetricLinkRateLimited)
		e.emitFailure(ctx, auditEventLinkFailure, owner, username, ReasonRateLimited, nil)
		return failResult(ReasonRateLimited, "too many attempts, wait before retrying"), nil
	default:
		e.metricInc(MetricLinkRemoteError)
		e.emitFailure(ctx, auditEventLinkFailure, owner, username, ReasonRemoteError, func() map[string]string {
			return map[string]string{"remote_message": rejection.Message}
		})
		return failResult(ReasonRemoteError, rejection.Message), nil
	}
}

// issueChallenge runs the verification setup leg: parse the challenge
// reference, ask the remote to dispatch a code, then store the checkpoint
// keyed by owner. An existing checkpoint for the same owner is overwritten.
// Nothing is stored when any setup step fails.
func (e *Engine) issueChallenge(
	ctx context.Context,
	owner string,
	username string,
	secret string,
	challengeURL string,
	client *remote.Client,
	handle *cookies.Handle,
) (*LinkResult, error) {
	desc, err := challenge.Parse(challengeURL)
	if err != nil {
		e.metricInc(MetricChallengeMalformed)
		e.emitFailure(ctx, auditEventChallengeSetupError, owner, username, ReasonMalformedChallenge, nil)
		return failResult(ReasonMalformedChallenge, "unable to start verification"), nil
	}

	state, err := client.InitiateChallenge(ctx, desc)
	if err != nil {
		e.metricInc(MetricChallengeInitiationFailed)
		e.emitFailure(ctx, auditEventChallengeSetupError, owner, username, ReasonChallengeInitiationFailed, nil)
		return failResult(ReasonChallengeInitiationFailed, "unable to start verification"), nil
	}

	snapshot, err := handle.Export()
	if err != nil {
		return nil, ErrCookieStoreUnavailable
	}

	ttl := e.config.Checkpoint.TTL
	now := time.Now()
	record := &stores.Checkpoint{
		Username:         username,
		Secret:           []byte(secret),
		ChallengeID:      desc.ID,
		ChallengeContext: desc.Context,
		ContactChannel:   state.Channel,
		ContactMasked:    state.ContactMasked,
		DeviceSeed:       username,
		Cookies:          snapshot,
		CreatedAt:        now.Unix(),
		ExpiresAt:        now.Add(ttl).Unix(),
	}

	if err := e.checkpoints.Save(ctx, owner, record, ttl); err != nil {
		return nil, ErrCheckpointUnavailable
	}

	e.metricInc(MetricCheckpointStored)
	e.metricInc(MetricChallengeIssued)
	e.emitAudit(ctx, auditEventChallengeIssued, true, owner, username, nil, func() map[string]string {
		return map[string]string{
			"contact_channel": string(channelFromStore(state.Channel)),
			"contact_masked":  state.ContactMasked,
		}
	})

	return &LinkResult{
		Status: StatusChallengeIssued,
		Challenge: &ChallengeInfo{
			ContactChannel: channelFromStore(state.Channel),
			ContactMasked:  state.ContactMasked,
		},
	}, nil
}

// completeLink finishes a successful login: the authenticated cookie
// snapshot is persisted under the linked account's session key and the
// caller-facing account record is written through the AccountStore.
func (e *Engine) completeLink(
	ctx context.Context,
	owner string,
	profile *remote.Profile,
	handle *cookies.Handle,
) (*LinkResult, error) {
	snapshot, err := handle.Export()
	if err != nil {
		log.Print("goLink: session snapshot export failed, account will need a relink before follow actions")
	} else if perr := e.cookies.Persist(ctx, sessionOwner(profile.Username), snapshot); perr != nil {
		log.Print("goLink: session snapshot persist failed, account will need a relink before follow actions")
	}

	// A login that succeeds outright supersedes any checkpoint the owner
	// still had pending from an earlier attempt.
	if _, derr := e.checkpoints.Delete(ctx, owner); derr != nil {
		log.Print("goLink: stale checkpoint delete failed after link, record will lapse at its deadline")
	}

	account := LinkedAccount{
		ExternalID:       profile.ID,
		ExternalUsername: profile.Username,
		ConnectedAt:      time.Now().UTC(),
	}
	if err := e.accounts.SaveLinkedAccount(ctx, owner, account); err != nil {
		e.emitAudit(ctx, auditEventLinkFailure, false, owner, profile.Username, ErrAccountStoreUnavailable, nil)
		return nil, ErrAccountStoreUnavailable
	}

	e.metricInc(MetricLinkSuccess)
	e.emitAudit(ctx, auditEventLinkSuccess, true, owner, profile.Username, nil, nil)

	return &LinkResult{Status: StatusLinked, Account: &account}, nil
}

func failResult(reason FailReason, detail string) *LinkResult {
	return &LinkResult{Status: StatusFailed, Reason: reason, Detail: detail}
}
