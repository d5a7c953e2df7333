package goLink

import (
	"net/http"

	"github.com/MrEthical07/goLink/internal/cookies"
	"github.com/MrEthical07/goLink/internal/device"
	"github.com/MrEthical07/goLink/internal/remote"
	"github.com/MrEthical07/goLink/internal/stores"
)

// Engine defines a public type used by goLink APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config      Config
	checkpoints stores.CheckpointStore
	cookies     cookies.Store
	accounts    AccountStore
	audit       *auditDispatcher
	metrics     *Metrics
	transport   http.RoundTripper
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.checkpoints != nil {
		e.checkpoints.Close()
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() bool {
	return e != nil && e.checkpoints != nil && e.cookies != nil && e.accounts != nil
}

func (e *Engine) remoteConfig() remote.Config {
	return remote.Config{
		BaseURL:    e.config.Remote.BaseURL,
		Timeout:    e.config.Remote.Timeout,
		MaxRetries: e.config.Remote.MaxRetries,
		RetryBase:  e.config.Remote.RetryBackoff,
		Transport:  e.transport,
	}
}

// newFlowClient builds the per-attempt client: a fresh cookie handle owned
// by owner and a device identity derived from seed. Nothing here is shared
// across owners or reused between attempts.
func (e *Engine) newFlowClient(owner, seed string) (*remote.Client, *cookies.Handle, error) {
	identity := device.NewIdentity(seed, e.config.Device.Profile)

	handle, err := cookies.NewHandle(owner, e.config.Remote.BaseURL)
	if err != nil {
		return nil, nil, ErrCookieStoreUnavailable
	}

	client, err := remote.NewClient(e.remoteConfig(), identity, handle.Jar())
	if err != nil {
		return nil, nil, ErrEngineNotReady
	}
	return client, handle, nil
}

// sessionOwner is the cookie-store key for a linked account's persisted
// session, distinct from the flow's owner session key space.
func sessionOwner(externalUsername string) string {
	return "acct:" + externalUsername
}
