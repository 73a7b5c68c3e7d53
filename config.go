package gatekeeper

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by gatekeeper APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Session   SessionConfig
	RateLimit RateLimitConfig
	Routes    RouteConfig
	CSRF      CSRFConfig
	Headers   HeaderConfig
	Password  PasswordConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by gatekeeper APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	Secret     []byte
	TTL        time.Duration
	CookieName string
	Issuer     string
	Leeway     time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RatePolicy is a request quota: at most Limit requests per rolling Window.
type RatePolicy struct {
	Limit  int
	Window time.Duration
}

// RateLimitConfig defines a public type used by gatekeeper APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	KeyPrefix    string
	StoreTimeout time.Duration
	Global       RatePolicy
	Auth         RatePolicy
}

/*
====================================
ROUTE CONFIG
====================================
*/

// RouteConfig declares the path layout the gatekeeper classifies against.
// Prefixes match whole path segments: "/admin" matches "/admin/posts" but
// not "/administrator".
type RouteConfig struct {
	AdminPagePrefix      string
	ProtectedAPIPrefixes []string
	PublicAPIPrefixes    []string
	AuthExchangePath     string
	LoginPath            string
	AdminHome            string
	HomePath             string
}

// CSRFConfig defines a public type used by gatekeeper APIs.
//
// CSRFConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CSRFConfig struct {
	HeaderName string
}

// HeaderConfig defines a public type used by gatekeeper APIs.
//
// HeaderConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HeaderConfig struct {
	ContentSecurityPolicy string
	ReferrerPolicy        string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by gatekeeper APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	MemoryKB       uint32
	Iterations     uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	UpgradeOnLogin bool
}

// AuditConfig defines a public type used by gatekeeper APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by gatekeeper APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the engine's baseline configuration: a 24h session,
// the standard route layout, and production argon2id cost parameters. The
// session secret is left empty and must be supplied by the caller.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			TTL:        24 * time.Hour,
			CookieName: "session_token",
			Issuer:     "tekreview",
			Leeway:     30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			KeyPrefix:    "gk",
			StoreTimeout: 250 * time.Millisecond,
			Global:       RatePolicy{Limit: 1000, Window: time.Minute},
			Auth:         RatePolicy{Limit: 50, Window: time.Minute},
		},
		Routes: RouteConfig{
			AdminPagePrefix:      "/admin",
			ProtectedAPIPrefixes: []string{"/api"},
			PublicAPIPrefixes:    []string{"/api/articles", "/api/images"},
			AuthExchangePath:     "/api/auth",
			LoginPath:            "/auth/login",
			AdminHome:            "/admin",
			HomePath:             "/",
		},
		CSRF: CSRFConfig{
			HeaderName: "X-CSRF-Token",
		},
		Headers: HeaderConfig{
			ContentSecurityPolicy: "default-src 'self'; img-src 'self' data: https:; script-src 'self'; style-src 'self' 'unsafe-inline'",
			ReferrerPolicy:        "strict-origin-when-cross-origin",
		},
		Password: PasswordConfig{
			MemoryKB:       65536,
			Iterations:     3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			UpgradeOnLogin: true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Session.Secret = cloneBytes(cfg.Session.Secret)
	out.Routes.ProtectedAPIPrefixes = cloneStrings(cfg.Routes.ProtectedAPIPrefixes)
	out.Routes.PublicAPIPrefixes = cloneStrings(cfg.Routes.PublicAPIPrefixes)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Session
	if len(c.Session.Secret) < 32 {
		return errors.New("Session Secret must be at least 32 bytes")
	}
	if c.Session.TTL <= 0 {
		return errors.New("Session TTL must be > 0")
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		return errors.New("Session CookieName is required")
	}
	if c.Session.Leeway < 0 || c.Session.Leeway > 2*time.Minute {
		return errors.New("Session Leeway must be between 0 and 2m")
	}

	// Rate limiting
	if c.RateLimit.Global.Limit <= 0 || c.RateLimit.Global.Window <= 0 {
		return errors.New("RateLimit Global policy must have Limit > 0 and Window > 0")
	}
	if c.RateLimit.Auth.Limit <= 0 || c.RateLimit.Auth.Window <= 0 {
		return errors.New("RateLimit Auth policy must have Limit > 0 and Window > 0")
	}
	if c.RateLimit.StoreTimeout < 0 {
		return errors.New("RateLimit StoreTimeout must be >= 0")
	}

	// Routes
	for _, p := range []string{
		c.Routes.AdminPagePrefix,
		c.Routes.AuthExchangePath,
		c.Routes.LoginPath,
		c.Routes.AdminHome,
		c.Routes.HomePath,
	} {
		if !strings.HasPrefix(p, "/") {
			return errors.New("Routes paths must start with '/'")
		}
	}
	if len(c.Routes.ProtectedAPIPrefixes) == 0 {
		return errors.New("Routes ProtectedAPIPrefixes must not be empty")
	}
	for _, p := range c.Routes.ProtectedAPIPrefixes {
		if !strings.HasPrefix(p, "/") {
			return errors.New("Routes ProtectedAPIPrefixes entries must start with '/'")
		}
	}
	for _, p := range c.Routes.PublicAPIPrefixes {
		if !strings.HasPrefix(p, "/") {
			return errors.New("Routes PublicAPIPrefixes entries must start with '/'")
		}
	}

	// CSRF
	if strings.TrimSpace(c.CSRF.HeaderName) == "" {
		return errors.New("CSRF HeaderName is required")
	}

	// Headers
	if strings.TrimSpace(c.Headers.ContentSecurityPolicy) == "" {
		return errors.New("Headers ContentSecurityPolicy is required")
	}
	if strings.TrimSpace(c.Headers.ReferrerPolicy) == "" {
		return errors.New("Headers ReferrerPolicy is required")
	}

	// Password
	if c.Password.MemoryKB < 8*1024 {
		return errors.New("Password MemoryKB must be >= 8192")
	}
	if c.Password.Iterations < 1 {
		return errors.New("Password Iterations must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
