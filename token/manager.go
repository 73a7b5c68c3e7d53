package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role defines a public type used by gatekeeper APIs.
//
// Role instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Role string

const (
	// RoleUser is an exported constant or variable used by the gatekeeping engine.
	RoleUser Role = "USER"
	// RoleAdmin is an exported constant or variable used by the gatekeeping engine.
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether the role is one of the recognized role values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Config defines a public type used by gatekeeper APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	Leeway time.Duration
}

// Claims defines a public type used by gatekeeper APIs.
//
// Claims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Claims struct {
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Role      Role   `json:"role"`
	CSRFToken string `json:"csrf"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim, the stable identifier of the user the
// session belongs to.
func (c *Claims) UserID() string {
	return c.Subject
}

// Manager defines a public type used by gatekeeper APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config Config
}

const minSecretLen = 32

// NewManager describes the newmanager operation and its observable behavior.
//
// NewManager may return an error when input validation, dependency calls, or security checks fail.
// NewManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < minSecretLen {
		return nil, errors.New("token secret must be at least 32 bytes")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)

	return &Manager{config: cfg}, nil
}

// Issue describes the issue operation and its observable behavior.
//
// Issue may return an error when input validation, dependency calls, or security checks fail.
// Issue does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Issue(userID, email, name string, role Role, csrfToken string) (string, error) {
	if userID == "" || email == "" {
		return "", errors.New("token requires user id and email")
	}
	if !role.Valid() {
		return "", errors.New("unrecognized role")
	}
	if csrfToken == "" {
		return "", errors.New("token requires a csrf secret")
	}

	now := time.Now()
	claims := Claims{
		Email:     email,
		Name:      name,
		Role:      role,
		CSRFToken: csrfToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
}

// Verify describes the verify operation and its observable behavior.
//
// Verify returns (nil, nil) for every invalid token: empty input, malformed
// compact form, wrong signature or algorithm, expired or not-yet-valid claims.
// Callers treat a nil Claims as an anonymous request.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, nil
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, nil
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, nil
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, nil
	}

	return claims, nil
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.config.TTL
}
