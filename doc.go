// Package gatekeeper is the request-gatekeeping layer for the tekreview
// publishing site: rate limiting, session verification, role checks, CSRF
// protection, and security headers applied uniformly in front of the content
// handlers.
//
// The engine is assembled through the [Builder]:
//
//	gk, err := gatekeeper.New().
//		WithConfig(cfg).
//		WithRedis(redisClient).
//		WithUserProvider(provider).
//		Build()
//
// Every inbound request flows through [Gatekeeper.Evaluate], which walks a
// fixed stage order (identify, rate-check, classify, authenticate, authorize,
// CSRF-check) and returns a [Decision]: allow, redirect, or reject. The
// middleware subpackage turns Decisions into HTTP responses; callers that
// own their transport can consume Decisions directly.
//
// # Architecture boundaries
//
//   - The engine never renders content. Handlers behind it receive an
//     already-checked request and the verified identity.
//   - User storage is injected via [UserProvider]; the engine never talks to
//     a database of its own.
//   - Redis is the only shared mutable state: sliding-window rate counters
//     and the optional response cache.
//
// # Failure policy
//
// Rate limiting fails open: a dead or slow Redis admits traffic and raises a
// metric and audit event instead of refusing requests. Session verification
// never fails open: a token that does not verify is an anonymous request.
// Configuration errors (short secret, zero TTL) are caught once, at Build.
//
// Docs: docs/gatekeeper.md
package gatekeeper
