package goLink

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goLink/internal/cookies"
	"github.com/MrEthical07/goLink/internal/stores"
)

// Builder defines a public type used by goLink APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config    Config
	redis     redis.UniversalClient
	accounts  AccountStore
	auditSink AuditSink
	transport http.RoundTripper
	built     bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAccountStore describes the withaccountstore operation and its observable behavior.
//
// WithAccountStore may return an error when input validation, dependency calls, or security checks fail.
// WithAccountStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAccountStore(store AccountStore) *Builder {
	b.accounts = store
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithTransport describes the withtransport operation and its observable behavior.
//
// WithTransport may return an error when input validation, dependency calls, or security checks fail.
// WithTransport does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithTransport(rt http.RoundTripper) *Builder {
	b.transport = rt
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("goLink: builder already used")
	}
	b.built = true

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.accounts == nil {
		return nil, errors.New("goLink: account store is required")
	}
	if cfg.Cookies.Backend == CookiesRedis && b.redis == nil {
		return nil, errors.New("goLink: redis client is required for the redis cookie backend")
	}

	metrics := NewMetrics(cfg.Metrics)
	dispatcher := newAuditDispatcher(cfg.Audit, b.auditSink)

	var checkpoints stores.CheckpointStore
	if b.redis != nil {
		checkpoints = stores.NewRedisCheckpointStore(b.redis, cfg.Checkpoint.RedisPrefix)
	} else {
		checkpoints = stores.NewMemoryCheckpointStore(cfg.Checkpoint.SweepInterval, func(owner string) {
			metrics.Inc(MetricCheckpointSwept)
			dispatcher.Emit(context.Background(), AuditEvent{
				Timestamp: time.Now().UTC(),
				EventType: auditEventCheckpointSwept,
				Owner:     owner,
				Success:   true,
			})
		})
	}

	var cookieStore cookies.Store
	switch cfg.Cookies.Backend {
	case CookiesMemory:
		cookieStore = cookies.NewMemoryStore()
	case CookiesFile:
		store, err := cookies.NewFileStore(cfg.Cookies.Dir)
		if err != nil {
			checkpoints.Close()
			dispatcher.Close()
			return nil, err
		}
		cookieStore = store
	case CookiesRedis:
		cookieStore = cookies.NewRedisStore(b.redis, cfg.Cookies.RedisPrefix, cfg.Cookies.SessionTTL)
	default:
		checkpoints.Close()
		dispatcher.Close()
		return nil, errors.New("goLink: unknown cookie backend " + string(cfg.Cookies.Backend))
	}

	return &Engine{
		config:      cfg,
		checkpoints: checkpoints,
		cookies:     cookieStore,
		accounts:    b.accounts,
		audit:       dispatcher,
		metrics:     metrics,
		transport:   b.transport,
	}, nil
}
