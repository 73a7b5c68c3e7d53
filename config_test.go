package gatekeeper

import (
	"strings"
	"testing"
	"time"
)

func validTestConfig() Config {
	cfg := defaultConfig()
	cfg.Session.Secret = []byte(strings.Repeat("s", 32))
	return cfg
}

func TestDefaultConfigValidatesWithSecret(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config with secret should validate, got %v", err)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short secret", func(c *Config) { c.Session.Secret = []byte("short") }},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }},
		{"empty cookie name", func(c *Config) { c.Session.CookieName = " " }},
		{"oversized leeway", func(c *Config) { c.Session.Leeway = time.Hour }},
		{"zero global limit", func(c *Config) { c.RateLimit.Global.Limit = 0 }},
		{"zero auth window", func(c *Config) { c.RateLimit.Auth.Window = 0 }},
		{"relative admin prefix", func(c *Config) { c.Routes.AdminPagePrefix = "admin" }},
		{"relative login path", func(c *Config) { c.Routes.LoginPath = "auth/login" }},
		{"no protected prefixes", func(c *Config) { c.Routes.ProtectedAPIPrefixes = nil }},
		{"relative public prefix", func(c *Config) { c.Routes.PublicAPIPrefixes = []string{"api/articles"} }},
		{"empty csrf header", func(c *Config) { c.CSRF.HeaderName = "" }},
		{"empty csp", func(c *Config) { c.Headers.ContentSecurityPolicy = "" }},
		{"empty referrer policy", func(c *Config) { c.Headers.ReferrerPolicy = "" }},
		{"weak password memory", func(c *Config) { c.Password.MemoryKB = 1024 }},
		{"zero password iterations", func(c *Config) { c.Password.Iterations = 0 }},
		{"audit enabled without buffer", func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }},
	}

	for _, tc := range cases {
		cfg := validTestConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestCloneConfigIsDeep(t *testing.T) {
	cfg := validTestConfig()
	clone := cloneConfig(cfg)

	cfg.Session.Secret[0] = 'x'
	if clone.Session.Secret[0] == 'x' {
		t.Error("secret must be deep-copied")
	}

	cfg.Routes.PublicAPIPrefixes[0] = "/changed"
	if clone.Routes.PublicAPIPrefixes[0] == "/changed" {
		t.Error("route prefixes must be deep-copied")
	}
}
