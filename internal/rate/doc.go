// Package rate provides the Redis-backed sliding-window limiter used by the
// gatekeeping engine for per-client request quotas.
//
// # Window semantics
//
// Sliding-window counters: each key is a sorted set of request markers scored
// by millisecond timestamp. A check prunes markers older than the window,
// counts the survivors, and inserts a new marker only when the quota allows.
// Key prefixes:
//   - gk:global: — all traffic, per client identifier
//   - gk:auth:   — credential-exchange traffic, per client identifier
//
// # Failure policy
//
// The limiter fails open. A Redis error or timeout yields a permissive Result
// together with a wrapped [ErrRedisUnavailable] so callers can record the
// degradation without denying traffic.
//
// # What this package must NOT do
//
//   - Decide which policy applies to a request (the engine owns routing).
//   - Be imported outside the gatekeeper module.
package rate
