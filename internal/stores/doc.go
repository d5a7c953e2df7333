// Package stores provides the short-lived pending-checkpoint stores backing
// the account-linking flow.
//
// # Design
//
// A checkpoint is the ephemeral state bridging a login interrupted by a
// remote security challenge and the later verification call that resolves
// it. Records are keyed by the caller's owner session key, versioned and
// binary-encoded, and carry their expiry deadline inline. The Redis backend
// uses WATCH/MULTI optimistic transactions with automatic retry for attempt
// counting; the memory backend pairs lazy eviction on lookup with a
// cancellable background sweeper.
//
// # Architecture boundaries
//
// This package owns persistence and concurrency control for transient
// checkpoint records. It does NOT talk to the remote platform, parse
// challenge URLs, or make linking decisions — those belong to the Engine.
//
// # What this package must NOT do
//
//   - Import goLink or any sibling internal package.
//   - Log or expose plaintext credentials.
//   - Extend a record's TTL when counting a failed attempt.
package stores
