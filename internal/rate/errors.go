package rate

import "errors"

var (
	// ErrRedisUnavailable is an exported constant or variable used by the gatekeeping engine.
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrInvalidKey is an exported constant or variable used by the gatekeeping engine.
	ErrInvalidKey = errors.New("rate key must be non-empty")
	// ErrInvalidPolicy is an exported constant or variable used by the gatekeeping engine.
	ErrInvalidPolicy = errors.New("rate policy limit and window must be > 0")
)
