package gatekeeper

import "errors"

var (
	// ErrRateLimited is an exported constant or variable used by the gatekeeping engine.
	ErrRateLimited = errors.New("rate limited")
	// ErrInvalidCredentials is an exported constant or variable used by the gatekeeping engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginRateLimited is an exported constant or variable used by the gatekeeping engine.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrUserNotFound is an exported constant or variable used by the gatekeeping engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrProviderUnavailable is an exported constant or variable used by the gatekeeping engine.
	ErrProviderUnavailable = errors.New("user provider unavailable")
	// ErrGatekeeperNotReady is an exported constant or variable used by the gatekeeping engine.
	ErrGatekeeperNotReady = errors.New("gatekeeper not initialized")
)
