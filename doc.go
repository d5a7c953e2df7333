// Package goLink links external Instagram accounts to local owners through a
// credentialed login flow with checkpoint challenge handling, one-time code
// verification, deterministic device identities, and persisted cookie sessions.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goLink is the public surface. It exposes [Engine], [Builder], [Config], and value types
// (LinkResult, LinkedAccount, MetricsSnapshot, etc.). All internal coordination — remote
// emulation, checkpoint storage, cookie handling, audit dispatch — lives under internal/
// and is never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or record encodings in its public API.
//   - Persist owner identities or user records; that boundary belongs to the caller's
//     [AccountStore].
//   - Return plaintext secrets after a flow terminates. Checkpoint secrets are wiped on
//     success, cancellation, expiry, and attempt exhaustion.
//
// # Flow contract
//
// BeginLink performs at most one credentialed login round-trip plus, when a checkpoint is
// raised, one challenge dispatch round-trip. SubmitVerification performs one code
// submission plus one resumed login. No partial state survives a failed attempt: a
// checkpoint record exists exactly when the last result was StatusChallengeIssued and its
// deadline has not passed.
package goLink
