package gatekeeper

import (
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestBuildRequiresRedis(t *testing.T) {
	_, err := New().
		WithConfig(validTestConfig()).
		WithUserProvider(&stubProvider{}).
		Build()
	if err == nil || !strings.Contains(err.Error(), "redis") {
		t.Fatalf("expected redis requirement error, got %v", err)
	}
}

func TestBuildRequiresUserProvider(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	_, err := New().
		WithConfig(validTestConfig()).
		WithRedis(client).
		Build()
	if err == nil || !strings.Contains(err.Error(), "user provider") {
		t.Fatalf("expected user provider requirement error, got %v", err)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := validTestConfig()
	cfg.Session.Secret = []byte("too short")

	_, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserProvider(&stubProvider{}).
		Build()
	if err == nil {
		t.Fatal("expected validation error for short secret")
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	b := New().
		WithConfig(validTestConfig()).
		WithRedis(client).
		WithUserProvider(&stubProvider{})

	gk, err := b.Build()
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	defer gk.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("second Build must fail")
	}
}

func TestWithSessionSecretOverridesConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := validTestConfig()
	cfg.Session.Secret = nil

	gk, err := New().
		WithConfig(cfg).
		WithSessionSecret([]byte(strings.Repeat("k", 32))).
		WithRedis(client).
		WithUserProvider(&stubProvider{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	gk.Close()
}

func TestWithAuditSinkEnablesAudit(t *testing.T) {
	b := New().WithAuditSink(NewChannelSink(4))
	if !b.config.Audit.Enabled {
		t.Fatal("providing a sink should enable the audit pipeline")
	}
}

func TestBuildClonesConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := validTestConfig()
	gk, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserProvider(&stubProvider{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer gk.Close()

	// Mutating the caller's copy after Build must not reach the engine.
	cfg.Session.Secret[0] ^= 0xff
	cfg.Routes.PublicAPIPrefixes[0] = "/changed"

	if gk.config.Session.Secret[0] == cfg.Session.Secret[0] {
		t.Error("engine secret must be isolated from the caller")
	}
	if gk.config.Routes.PublicAPIPrefixes[0] == "/changed" {
		t.Error("engine routes must be isolated from the caller")
	}
}
