// Package remote is the request-issuing boundary against the third-party
// platform's private mobile API.
//
// # Design
//
// Every call attaches the fixed emulation headers, the caller's device
// identity, and the flow's cookie jar, then normalizes the response: 2xx
// bodies decode into typed results, everything else becomes exactly one of
// three error shapes — a tagged Rejection (pattern-matched from the body,
// never retried), a TransientError (connectivity or 5xx, retried here with
// bounded exponential backoff), or a MalformedError (fatal for the
// attempt). Nothing above this package inspects raw remote payloads.
//
// # What this package must NOT do
//
//   - Hold pending challenge state between calls.
//   - Retry a structured rejection.
//   - Share a client (device identity + jar) across owners.
package remote
