package internaldefs

import (
	goLink "github.com/MrEthical07/goLink"
)

// CounterDef defines a public type used by goLink APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goLink.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goLink APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goLink.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the account-linking engine.
var CounterDefs = []CounterDef{
	{ID: goLink.MetricLinkSuccess, Name: "golink_link_success_total", Help: "Completed account links."},
	{ID: goLink.MetricLinkInvalidCredentials, Name: "golink_link_invalid_credentials_total", Help: "Link attempts rejected for bad credentials."},
	{ID: goLink.MetricLinkRemoteError, Name: "golink_link_remote_error_total", Help: "Link attempts failed on remote or transport errors."},
	{ID: goLink.MetricLinkRateLimited, Name: "golink_link_rate_limited_total", Help: "Link attempts rejected by remote rate limiting."},
	{ID: goLink.MetricChallengeIssued, Name: "golink_challenge_issued_total", Help: "Verification challenges issued to callers."},
	{ID: goLink.MetricChallengeMalformed, Name: "golink_challenge_malformed_total", Help: "Checkpoint responses with unparseable challenge references."},
	{ID: goLink.MetricChallengeInitiationFailed, Name: "golink_challenge_initiation_failed_total", Help: "Failed verification-code dispatch requests."},
	{ID: goLink.MetricVerifySuccess, Name: "golink_verify_success_total", Help: "Accepted verification codes."},
	{ID: goLink.MetricVerifyInvalidCode, Name: "golink_verify_invalid_code_total", Help: "Rejected verification codes."},
	{ID: goLink.MetricVerifyAttemptsExceeded, Name: "golink_verify_attempts_exceeded_total", Help: "Checkpoints invalidated by the attempt cap."},
	{ID: goLink.MetricVerifyNoPending, Name: "golink_verify_no_pending_total", Help: "Verification submissions with no pending checkpoint."},
	{ID: goLink.MetricCheckpointStored, Name: "golink_checkpoint_stored_total", Help: "Checkpoint records stored."},
	{ID: goLink.MetricCheckpointCancelled, Name: "golink_checkpoint_cancelled_total", Help: "Checkpoint records cancelled by callers."},
	{ID: goLink.MetricCheckpointSwept, Name: "golink_checkpoint_swept_total", Help: "Expired checkpoint records removed by the sweeper."},
	{ID: goLink.MetricFollowSuccess, Name: "golink_follow_success_total", Help: "Successful follow actions."},
	{ID: goLink.MetricFollowFailure, Name: "golink_follow_failure_total", Help: "Failed follow actions."},
}

// HistogramDefs is an exported constant or variable used by the account-linking engine.
var HistogramDefs = []HistogramDef{
	{ID: goLink.MetricLoginLatency, Name: "golink_login_latency_seconds", Help: "Remote login latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the account-linking engine.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the account-linking engine.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
