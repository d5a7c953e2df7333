// Package device produces the synthetic client fingerprint attached to
// every emulated request. Identities are derived deterministically from the
// external account name so a relinked account presents the same device the
// remote platform already trusts.
package device
