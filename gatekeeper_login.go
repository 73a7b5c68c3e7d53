package gatekeeper

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tekreview/gatekeeper/internal/rate"
)

// Login describes the login operation and its observable behavior.
//
// Login exchanges credentials for a signed session token. The flow: throttle
// per identifier, look up the account, verify the argon2id hash, upgrade the
// stored hash if the cost parameters grew, then issue a token carrying a
// fresh CSRF secret. Lookup failures and bad passwords both surface as
// [ErrInvalidCredentials] so callers cannot probe for valid addresses.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Gatekeeper) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if g == nil || g.userProvider == nil {
		return nil, ErrGatekeeperNotReady
	}

	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" {
		g.metrics.Inc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	// Identifier throttle, on top of the per-IP auth policy the request
	// pipeline already applied. Shares the auth quota shape.
	res, err := g.rateLimiter.Check(ctx, "login", email, rate.Policy{
		Limit:  g.config.RateLimit.Auth.Limit,
		Window: g.config.RateLimit.Auth.Window,
	})
	if err != nil {
		g.metrics.Inc(MetricStoreFailOpen)
		g.emitAudit(ctx, auditEventStoreFailOpen, true, "", "", err, nil)
	}
	if !res.Allowed {
		g.metrics.Inc(MetricLoginRateLimited)
		g.emitAudit(ctx, auditEventLoginRateLimited, false, "", "", ErrLoginRateLimited, func() map[string]string {
			return map[string]string{"identifier": email}
		})
		return nil, ErrLoginRateLimited
	}

	user, err := g.userProvider.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			g.metrics.Inc(MetricLoginFailure)
			g.emitAudit(ctx, auditEventLoginFailure, false, "", "", ErrUserNotFound, nil)
			return nil, ErrInvalidCredentials
		}
		g.metrics.Inc(MetricLoginFailure)
		g.emitAudit(ctx, auditEventLoginFailure, false, "", "", ErrProviderUnavailable, nil)
		return nil, ErrProviderUnavailable
	}

	ok, err := g.passwordHash.Verify(creds.Password, user.PasswordHash)
	if err != nil || !ok {
		g.metrics.Inc(MetricLoginFailure)
		g.emitAudit(ctx, auditEventLoginFailure, false, user.ID, "", ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	if g.config.Password.UpgradeOnLogin {
		g.maybeUpgradeHash(ctx, user, creds.Password)
	}

	csrfToken := uuid.NewString()
	raw, err := g.tokens.Issue(user.ID, user.Email, user.Name, user.Role, csrfToken)
	if err != nil {
		g.metrics.Inc(MetricLoginFailure)
		g.emitAudit(ctx, auditEventLoginFailure, false, user.ID, "", err, nil)
		return nil, err
	}

	g.metrics.Inc(MetricLoginSuccess)
	g.metrics.Inc(MetricTokenIssued)
	g.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, "", nil, nil)

	return &LoginResult{
		Token:     raw,
		CSRFToken: csrfToken,
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		ExpiresAt: time.Now().Add(g.config.Session.TTL),
	}, nil
}

// maybeUpgradeHash rehashes the credential at current cost parameters after
// a successful verify. Best effort: a provider write failure leaves the old
// hash in place and the login still succeeds.
func (g *Gatekeeper) maybeUpgradeHash(ctx context.Context, user UserRecord, plaintext string) {
	upgrade, err := g.passwordHash.NeedsRehash(user.PasswordHash)
	if err != nil || !upgrade {
		return
	}

	newHash, err := g.passwordHash.Hash(plaintext)
	if err != nil {
		return
	}
	_ = g.userProvider.UpdatePasswordHash(ctx, user.ID, newHash)
}
