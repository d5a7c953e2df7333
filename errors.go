package goLink

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the account-linking engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrCredentialsRequired is an exported constant or variable used by the account-linking engine.
	ErrCredentialsRequired = errors.New("username and password required")
	// ErrCodeRequired is an exported constant or variable used by the account-linking engine.
	ErrCodeRequired = errors.New("verification code required")
	// ErrOwnerKeyRequired is an exported constant or variable used by the account-linking engine.
	ErrOwnerKeyRequired = errors.New("owner session key required")
	// ErrCheckpointUnavailable is an exported constant or variable used by the account-linking engine.
	ErrCheckpointUnavailable = errors.New("checkpoint store unavailable")
	// ErrCookieStoreUnavailable is an exported constant or variable used by the account-linking engine.
	ErrCookieStoreUnavailable = errors.New("cookie store unavailable")
	// ErrAccountStoreUnavailable is an exported constant or variable used by the account-linking engine.
	ErrAccountStoreUnavailable = errors.New("account store unavailable")
	// ErrNotLinked is an exported constant or variable used by the account-linking engine.
	ErrNotLinked = errors.New("no linked session for account")
	// ErrSessionExpired is an exported constant or variable used by the account-linking engine.
	ErrSessionExpired = errors.New("linked session expired")
	// ErrTargetNotFound is an exported constant or variable used by the account-linking engine.
	ErrTargetNotFound = errors.New("target account not found")
	// ErrRemoteUnavailable is an exported constant or variable used by the account-linking engine.
	ErrRemoteUnavailable = errors.New("remote platform unavailable")
)
