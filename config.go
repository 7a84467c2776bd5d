package goClient

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config defines a public type used by goClient APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// BaseURL is the single externally tunable endpoint parameter: every
	// path (/login/, /register/, /refresh/, resource endpoints) is resolved
	// against it.
	BaseURL string

	HTTP    HTTPConfig
	Session SessionConfig
	Refresh RefreshConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
HTTP CONFIG
====================================
*/

// HTTPConfig defines a public type used by goClient APIs.
//
// HTTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HTTPConfig struct {
	// RequestTimeout bounds every outgoing request send. A timed-out request
	// surfaces as a transport error, never as an authorization failure.
	RequestTimeout time.Duration
	// RefreshTimeout bounds the refresh call itself.
	RefreshTimeout time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by goClient APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// StorageKey names the durable session record.
	StorageKey string
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig defines a public type used by goClient APIs.
//
// RefreshConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshConfig struct {
	// WaiterTimeout bounds how long a caller blocks on an in-flight refresh
	// before giving up with ErrRefreshTimeout. The refresh itself keeps
	// running; only the caller stops waiting.
	WaiterTimeout time.Duration
	// MaxRetries is the number of automatic replays a single request may
	// receive after an authorization failure. Values above 1 reintroduce the
	// retry loops the single-retry marker exists to prevent, so Validate
	// rejects them.
	MaxRetries int
}

// AuditConfig defines a public type used by goClient APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// FlushOnClose delivers the buffered backlog to the sink during Close;
	// when false the backlog is discarded and counted as dropped. Shutdown of
	// the hosting application should not hang on a slow sink unless the
	// integrator opts in.
	FlushOnClose bool
}

// MetricsConfig defines a public type used by goClient APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			RequestTimeout: 30 * time.Second,
			RefreshTimeout: 10 * time.Second,
		},
		Session: SessionConfig{
			StorageKey: "goclient:session",
		},
		Refresh: RefreshConfig{
			WaiterTimeout: 15 * time.Second,
			MaxRetries:    1,
		},
		Audit: AuditConfig{
			Enabled:      false,
			BufferSize:   256,
			DropIfFull:   true,
			FlushOnClose: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// Config holds no reference types today; the clone exists so the Builder
	// and Client never alias caller-owned memory.
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("BaseURL required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("BaseURL must be an absolute URL")
	}
	if c.HTTP.RequestTimeout <= 0 {
		return errors.New("HTTP RequestTimeout must be positive")
	}
	if c.HTTP.RefreshTimeout <= 0 {
		return errors.New("HTTP RefreshTimeout must be positive")
	}
	if c.Refresh.WaiterTimeout <= 0 {
		return errors.New("Refresh WaiterTimeout must be positive")
	}
	if c.Refresh.MaxRetries < 0 || c.Refresh.MaxRetries > 1 {
		return errors.New("Refresh MaxRetries must be 0 or 1")
	}
	return nil
}
