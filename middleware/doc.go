// Package middleware adapts the gatekeeping engine to net/http. Gate wraps
// a handler chain: it evaluates every request, applies the engine's header
// policy to the response, and translates reject/redirect decisions into
// JSON errors or HTTP redirects. Allowed requests continue with the verified
// identity and client IP injected into the request context.
package middleware
