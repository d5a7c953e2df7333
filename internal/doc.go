// Package internal groups the pieces of the linking flow that are
// intentionally private to goLink.
//
// # Sub-packages
//
//   - challenge — checkpoint URL parsing into challenge descriptors
//   - cookies — session cookie snapshots and their persistence backends
//   - device — deterministic emulated device identities
//   - remote — the HTTP client that speaks the remote platform's private API
//   - stores — pending-checkpoint persistence (memory and Redis)
//
// # What this package must NOT do
//
//   - Export types that appear in the public goLink API.
//   - Be imported by any package outside the goLink module.
package internal
