package goLink

import (
	"context"
	"time"

	"github.com/MrEthical07/goLink/internal/stores"
)

// LinkStatus discriminates the three outcomes of a linking operation.
type LinkStatus uint8

const (
	// StatusFailed is an exported constant or variable used by the account-linking engine.
	StatusFailed LinkStatus = iota
	// StatusLinked is an exported constant or variable used by the account-linking engine.
	StatusLinked
	// StatusChallengeIssued is an exported constant or variable used by the account-linking engine.
	StatusChallengeIssued
)

// FailReason classifies a StatusFailed result. Callers branch on it to
// tell "wrong password" from "security checkpoint" from "server problem".
type FailReason uint8

const (
	// ReasonNone is an exported constant or variable used by the account-linking engine.
	ReasonNone FailReason = iota
	// ReasonInvalidCredentials is an exported constant or variable used by the account-linking engine.
	ReasonInvalidCredentials
	// ReasonInvalidCode is an exported constant or variable used by the account-linking engine.
	ReasonInvalidCode
	// ReasonNoPendingChallenge is an exported constant or variable used by the account-linking engine.
	ReasonNoPendingChallenge
	// ReasonMalformedChallenge is an exported constant or variable used by the account-linking engine.
	ReasonMalformedChallenge
	// ReasonChallengeInitiationFailed is an exported constant or variable used by the account-linking engine.
	ReasonChallengeInitiationFailed
	// ReasonAttemptsExceeded is an exported constant or variable used by the account-linking engine.
	ReasonAttemptsExceeded
	// ReasonRateLimited is an exported constant or variable used by the account-linking engine.
	ReasonRateLimited
	// ReasonRemoteError is an exported constant or variable used by the account-linking engine.
	ReasonRemoteError
)

// ContactChannel names the channel a verification code was dispatched
// over.
type ContactChannel string

const (
	// ChannelUnknown is an exported constant or variable used by the account-linking engine.
	ChannelUnknown ContactChannel = ""
	// ChannelEmail is an exported constant or variable used by the account-linking engine.
	ChannelEmail ContactChannel = "email"
	// ChannelPhone is an exported constant or variable used by the account-linking engine.
	ChannelPhone ContactChannel = "phone"
)

// LinkedAccount carries the fields the caller persists when a link
// completes. The record's storage belongs to the surrounding service.
type LinkedAccount struct {
	ExternalID       int64
	ExternalUsername string
	ConnectedAt      time.Time
}

// ChallengeInfo is the user-facing portion of an issued challenge.
type ChallengeInfo struct {
	ContactChannel ContactChannel
	ContactMasked  string
}

// LinkResult is the discriminated result of BeginLink and
// SubmitVerification. Exactly one of Account and Challenge is populated,
// matching Status; Reason and Detail are set only for StatusFailed.
type LinkResult struct {
	Status    LinkStatus
	Account   *LinkedAccount
	Challenge *ChallengeInfo
	Reason    FailReason
	Detail    string
}

// FollowRecord is returned by Follow for the caller to persist and award
// points against.
type FollowRecord struct {
	TargetID       int64
	TargetUsername string
	FollowedAt     time.Time
}

// RemoteProfile is the live profile of an account as reported by the
// remote service, as opposed to the LinkedAccount snapshot taken at link
// time.
type RemoteProfile struct {
	ExternalID       int64
	ExternalUsername string
	FullName         string
	Private          bool
}

// AccountStore is the caller-supplied persistence boundary. The engine
// only produces the fields to write; the user database stays external.
type AccountStore interface {
	SaveLinkedAccount(ctx context.Context, ownerSessionKey string, account LinkedAccount) error
}

func channelFromStore(channel uint8) ContactChannel {
	switch channel {
	case stores.ContactEmail:
		return ChannelEmail
	case stores.ContactPhone:
		return ChannelPhone
	default:
		return ChannelUnknown
	}
}
