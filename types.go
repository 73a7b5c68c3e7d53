package gatekeeper

import (
	"context"
	"time"

	"github.com/tekreview/gatekeeper/token"
)

// RouteClass is the protection tier of a request path, derived per request
// and never stored.
//
//	Docs: docs/routing.md
type RouteClass uint8

const (
	// RoutePublic is an exported constant or variable used by the gatekeeping engine.
	RoutePublic RouteClass = iota
	// RouteAdminPage is an exported constant or variable used by the gatekeeping engine.
	RouteAdminPage
	// RouteProtectedAPI is an exported constant or variable used by the gatekeeping engine.
	RouteProtectedAPI
)

// String describes the string operation and its observable behavior.
func (c RouteClass) String() string {
	switch c {
	case RouteAdminPage:
		return "admin_page"
	case RouteProtectedAPI:
		return "protected_api"
	default:
		return "public"
	}
}

// Action defines a public type used by gatekeeper APIs.
//
// Action instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Action uint8

const (
	// ActionAllow is an exported constant or variable used by the gatekeeping engine.
	ActionAllow Action = iota
	// ActionRedirect is an exported constant or variable used by the gatekeeping engine.
	ActionRedirect
	// ActionReject is an exported constant or variable used by the gatekeeping engine.
	ActionReject
)

// RateStatus carries the quota outcome of the rate-check stage so transports
// can render Retry-After and X-RateLimit-* headers.
type RateStatus struct {
	Limit     int
	Remaining int
	Reset     int64
}

// Decision is the terminal outcome of [Gatekeeper.Evaluate] for one request.
//
// Exactly one of the three actions applies: ActionAllow passes the request to
// content handling, ActionRedirect carries Location, ActionReject carries
// Status plus a machine-readable Code and human Message for the JSON body.
// Identity is non-nil on protected routes whose session token verified;
// public routes skip verification and leave it nil.
type Decision struct {
	Action    Action
	Status    int
	Location  string
	Code      string
	Message   string
	Route     RouteClass
	Identity  *token.Claims
	RateLimit *RateStatus
}

// Allowed reports whether the request may proceed to content handling.
func (d Decision) Allowed() bool {
	return d.Action == ActionAllow
}

// UserRecord is the account record returned by [UserProvider]. It carries
// exactly what credential exchange and token issuance need.
type UserRecord struct {
	ID           string
	Email        string
	Name         string
	Role         token.Role
	PasswordHash string
}

// UserProvider is the interface callers implement to connect the gatekeeper
// to their user database. GetUserByEmail returns [ErrUserNotFound] for
// unknown addresses; any other error is treated as a backend outage.
// UpdatePasswordHash persists a rehashed credential after a cost upgrade.
//
//	Docs: docs/usage.md
type UserProvider interface {
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
}

// Credentials is the input to [Gatekeeper.Login].
type Credentials struct {
	Email    string
	Password string
}

// LoginResult is returned by [Gatekeeper.Login] on success. Token is the
// signed session token to set as a cookie; CSRFToken is the per-session
// anti-forgery secret also embedded in the token claims.
type LoginResult struct {
	Token     string
	CSRFToken string
	UserID    string
	Email     string
	Name      string
	Role      token.Role
	ExpiresAt time.Time
}
