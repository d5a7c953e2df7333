// Package httpapi exposes HTTP adapters for the account-linking engine: a bearer-token
// session middleware and JSON handlers for the link, verify, cancel, and follow
// operations.
//
// # Session middleware
//
// [RequireSession] reads the Authorization header, verifies the HS256-signed session
// token, and injects the token subject into the request context as the owner session
// key. Handlers read it back with [OwnerFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// linking logic itself — all decisions are delegated to the Engine, and the result
// mapping is purely mechanical: StatusLinked is 200, StatusChallengeIssued is 403 with
// error "checkpoint_required", and failure reasons map onto 400/401/429/502.
//
// # What this package must NOT do
//
//   - Persist anything (the Engine and the caller's AccountStore own all state).
//   - Log credentials, codes, or session tokens.
//   - Make linking decisions beyond pass/reject from Engine results.
package httpapi
