// Package cache is a thin JSON cache over Redis used by sites embedding the
// gatekeeper to memoize rendered fragments and lookup results.
//
// Values are marshaled to JSON on Set and unmarshaled on Get, so anything
// encodable by encoding/json round-trips. Keys share the configured prefix,
// which scopes InvalidatePrefix sweeps to this application's keyspace.
//
// Cache misses are not errors: Get reports (false, nil) and the caller
// recomputes.
package cache
