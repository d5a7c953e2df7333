package goLink

import (
	"errors"
	"net/url"
	"time"

	"github.com/MrEthical07/goLink/internal/device"
)

// Config defines a public type used by goLink APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Remote     RemoteConfig
	Checkpoint CheckpointConfig
	Cookies    CookieConfig
	Device     DeviceConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
REMOTE CONFIG
====================================
*/

// RemoteConfig defines a public type used by goLink APIs.
//
// RemoteConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RemoteConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

/*
====================================
CHECKPOINT CONFIG
====================================
*/

// CheckpointConfig defines a public type used by goLink APIs.
//
// CheckpointConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CheckpointConfig struct {
	TTL           time.Duration
	MaxAttempts   int
	SweepInterval time.Duration
	RedisPrefix   string
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieBackend selects the persistence backing for cookie snapshots.
type CookieBackend string

const (
	// CookiesMemory is an exported constant or variable used by the account-linking engine.
	CookiesMemory CookieBackend = "memory"
	// CookiesFile is an exported constant or variable used by the account-linking engine.
	CookiesFile CookieBackend = "file"
	// CookiesRedis is an exported constant or variable used by the account-linking engine.
	CookiesRedis CookieBackend = "redis"
)

// CookieConfig defines a public type used by goLink APIs.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieConfig struct {
	Backend     CookieBackend
	Dir         string
	RedisPrefix string
	SessionTTL  time.Duration
}

/*
====================================
DEVICE CONFIG
====================================
*/

// DeviceConfig defines a public type used by goLink APIs.
//
// DeviceConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type DeviceConfig struct {
	Profile device.Profile
}

/*
====================================
AUDIT + METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by goLink APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goLink APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Remote: RemoteConfig{
			BaseURL:      "https://i.instagram.com/api/v1",
			Timeout:      15 * time.Second,
			MaxRetries:   2,
			RetryBackoff: 250 * time.Millisecond,
		},
		Checkpoint: CheckpointConfig{
			TTL:           15 * time.Minute,
			MaxAttempts:   5,
			SweepInterval: time.Hour,
			RedisPrefix:   "alk",
		},
		Cookies: CookieConfig{
			Backend:     CookiesMemory,
			RedisPrefix: "alc",
		},
		Device: DeviceConfig{
			Profile: device.DefaultProfile,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DefaultConfig returns the baseline configuration. Callers mutate the
// copy before handing it to the Builder.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a full copy.
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if c.Remote.BaseURL == "" {
		return errors.New("Remote.BaseURL required")
	}
	if _, err := url.Parse(c.Remote.BaseURL); err != nil {
		return errors.New("Remote.BaseURL invalid")
	}
	if c.Remote.MaxRetries < 0 {
		return errors.New("Remote.MaxRetries must be >= 0")
	}
	if c.Checkpoint.TTL <= 0 {
		return errors.New("Checkpoint.TTL must be positive")
	}
	if c.Checkpoint.MaxAttempts < 2 {
		return errors.New("Checkpoint.MaxAttempts must allow at least one retry")
	}
	if c.Checkpoint.SweepInterval < 0 {
		return errors.New("Checkpoint.SweepInterval must be >= 0")
	}

	switch c.Cookies.Backend {
	case CookiesMemory, CookiesRedis:
	case CookiesFile:
		if c.Cookies.Dir == "" {
			return errors.New("Cookies.Dir required for file backend")
		}
	default:
		return errors.New("Cookies.Backend must be memory, file, or redis")
	}

	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must be >= 0")
	}
	return nil
}
