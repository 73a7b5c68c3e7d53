package gatekeeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tekreview/gatekeeper/password"
)

func TestLoginSuccess(t *testing.T) {
	gk, _, _ := newTestGatekeeper(t, nil)

	res, err := gk.Login(context.Background(), Credentials{
		Email:    testAdminEmail,
		Password: testAdminPassword,
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.Token == "" || res.CSRFToken == "" {
		t.Fatal("expected a session token and a csrf token")
	}
	if res.UserID != "u-admin" || res.Role != "ADMIN" {
		t.Errorf("unexpected identity: %+v", res)
	}
	if until := time.Until(res.ExpiresAt); until < 23*time.Hour || until > 25*time.Hour {
		t.Errorf("expiry should track the 24h TTL, got %v", until)
	}
	if got := gk.MetricValue(MetricLoginSuccess); got != 1 {
		t.Errorf("login success counter = %d, want 1", got)
	}
	if got := gk.MetricValue(MetricTokenIssued); got != 1 {
		t.Errorf("token issued counter = %d, want 1", got)
	}
}

func TestLoginNormalizesEmail(t *testing.T) {
	gk, _, _ := newTestGatekeeper(t, nil)

	if _, err := gk.Login(context.Background(), Credentials{
		Email:    "  Admin@TekReview.Example  ",
		Password: testAdminPassword,
	}); err != nil {
		t.Fatalf("case and whitespace must not matter, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	gk, _, _ := newTestGatekeeper(t, nil)

	_, err := gk.Login(context.Background(), Credentials{
		Email:    testAdminEmail,
		Password: "nope",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if got := gk.MetricValue(MetricLoginFailure); got != 1 {
		t.Errorf("login failure counter = %d, want 1", got)
	}
}

func TestLoginUnknownEmailIndistinguishable(t *testing.T) {
	gk, _, _ := newTestGatekeeper(t, nil)

	_, err := gk.Login(context.Background(), Credentials{
		Email:    "nobody@tekreview.example",
		Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown accounts must look like bad passwords, got %v", err)
	}
}

func TestLoginEmptyCredentials(t *testing.T) {
	gk, _, _ := newTestGatekeeper(t, nil)

	if _, err := gk.Login(context.Background(), Credentials{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginThrottledPerIdentifier(t *testing.T) {
	gk, _, _ := newTestGatekeeper(t, func(c *Config) {
		c.RateLimit.Auth = RatePolicy{Limit: 2, Window: time.Minute}
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := gk.Login(ctx, Credentials{Email: testAdminEmail, Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	_, err := gk.Login(ctx, Credentials{Email: testAdminEmail, Password: testAdminPassword})
	if !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("expected ErrLoginRateLimited after quota, got %v", err)
	}
	if got := gk.MetricValue(MetricLoginRateLimited); got != 1 {
		t.Errorf("login rate limited counter = %d, want 1", got)
	}

	// A different identifier is unaffected.
	if _, err := gk.Login(ctx, Credentials{Email: testWriterEmail, Password: testWriterPass}); err != nil {
		t.Fatalf("other identifier should still log in, got %v", err)
	}
}

func TestLoginProviderOutage(t *testing.T) {
	gk, _, provider := newTestGatekeeper(t, nil)
	provider.failAll = true

	_, err := gk.Login(context.Background(), Credentials{
		Email:    testAdminEmail,
		Password: testAdminPassword,
	})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestLoginUpgradesLegacyHash(t *testing.T) {
	// Engine runs at higher cost than the stored hash was made with.
	gk, _, provider := newTestGatekeeper(t, func(c *Config) {
		c.Password.MemoryKB = 16384
		c.Password.Iterations = 2
	})

	if _, err := gk.Login(context.Background(), Credentials{
		Email:    testAdminEmail,
		Password: testAdminPassword,
	}); err != nil {
		t.Fatalf("legacy hash must still verify: %v", err)
	}

	provider.mu.Lock()
	newHash := provider.updates["u-admin"]
	oldHash := provider.users[testAdminEmail].PasswordHash
	provider.mu.Unlock()

	if newHash == "" {
		t.Fatal("expected a rehash to be persisted")
	}
	if newHash == oldHash {
		t.Fatal("rehash must differ from the stored hash")
	}

	hasher, err := password.NewHasher(password.Params{
		MemoryKB:    16384,
		Iterations:  2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	ok, err := hasher.Verify(testAdminPassword, newHash)
	if err != nil || !ok {
		t.Fatalf("upgraded hash must verify the same password, ok=%v err=%v", ok, err)
	}
}

func TestLoginNoUpgradeWhenDisabled(t *testing.T) {
	gk, _, provider := newTestGatekeeper(t, func(c *Config) {
		c.Password.MemoryKB = 16384
		c.Password.Iterations = 2
		c.Password.UpgradeOnLogin = false
	})

	if _, err := gk.Login(context.Background(), Credentials{
		Email:    testAdminEmail,
		Password: testAdminPassword,
	}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()
	if len(provider.updates) != 0 {
		t.Fatalf("no rehash expected when upgrades are disabled, got %v", provider.updates)
	}
}

func TestLoginOnUnbuiltEngine(t *testing.T) {
	var gk *Gatekeeper
	if _, err := gk.Login(context.Background(), Credentials{}); !errors.Is(err, ErrGatekeeperNotReady) {
		t.Fatalf("expected ErrGatekeeperNotReady, got %v", err)
	}
}

func TestLoginTokenPassesEvaluate(t *testing.T) {
	gk, _, _ := newTestGatekeeper(t, nil)
	session := loginAs(t, gk, testAdminEmail, testAdminPassword)

	r := requestWithSession("POST", "/api/reviews", session)
	r.Header.Set("X-CSRF-Token", session.CSRFToken)
	d := gk.Evaluate(context.Background(), r)
	if !d.Allowed() {
		t.Fatalf("freshly issued session should clear the full pipeline, got %+v", d)
	}
	if d.Identity.CSRFToken != session.CSRFToken {
		t.Error("decision identity must carry the issued csrf token")
	}
}
