package goLink

import "time"

// Warning flags a configuration choice that passes Validate but is likely
// unintended outside of tests.
type Warning struct {
	Code   string
	Detail string
}

// Warnings defines a public type used by goLink APIs.
//
// Warnings instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Warnings []Warning

// Codes describes the codes operation and its observable behavior.
//
// Codes may return an error when input validation, dependency calls, or security checks fail.
// Codes does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (w Warnings) Codes() []string {
	codes := make([]string, 0, len(w))
	for _, warning := range w {
		codes = append(codes, warning.Code)
	}
	return codes
}

// Lint reports non-fatal configuration smells. Validate gates what is
// allowed; Lint flags what is allowed but probably wrong in production.
func (c *Config) Lint() Warnings {
	var ws Warnings

	if c.Checkpoint.TTL > 0 && c.Checkpoint.TTL < 5*time.Minute {
		ws = append(ws, Warning{
			Code:   "checkpoint_ttl_short",
			Detail: "verification codes arrive by email or SMS; users routinely need several minutes",
		})
	}
	if c.Checkpoint.TTL > time.Hour {
		ws = append(ws, Warning{
			Code:   "checkpoint_ttl_long",
			Detail: "pending checkpoints hold credentials; keep their lifetime short",
		})
	}
	if c.Checkpoint.MaxAttempts > 10 {
		ws = append(ws, Warning{
			Code:   "max_attempts_high",
			Detail: "generous code-retry budgets invite brute forcing",
		})
	}
	if c.Checkpoint.SweepInterval == 0 {
		ws = append(ws, Warning{
			Code:   "sweep_disabled",
			Detail: "the memory checkpoint store only evicts lazily without a sweeper",
		})
	}

	if c.Remote.MaxRetries > 5 {
		ws = append(ws, Warning{
			Code:   "retries_high",
			Detail: "aggressive retrying against the remote service looks like abuse",
		})
	}
	if c.Remote.Timeout > 0 && c.Remote.Timeout < 5*time.Second {
		ws = append(ws, Warning{
			Code:   "timeout_short",
			Detail: "login endpoints are slow under checkpoint review; short timeouts misread that as failure",
		})
	}

	if c.Cookies.Backend == CookiesMemory {
		ws = append(ws, Warning{
			Code:   "memory_cookies",
			Detail: "in-memory session snapshots vanish on restart; every account needs a relink",
		})
	}

	if !c.Audit.Enabled {
		ws = append(ws, Warning{
			Code:   "audit_disabled",
			Detail: "linking touches user credentials; keep an audit trail",
		})
	} else if !c.Audit.DropIfFull {
		ws = append(ws, Warning{
			Code:   "audit_blocking",
			Detail: "a slow sink with DropIfFull off can stall the linking path",
		})
	}

	return ws
}
