package gatekeeper

import (
	"net/http"
	"strconv"
)

// ApplyHeaders decorates a response with the engine's header policy for the
// given decision. Every response gets the fixed security header set; a
// throttled decision additionally gets retry metadata; an authenticated
// admin page response gets the role and CSRF token echoed for client reuse.
//
//	Docs: docs/headers.md
func (g *Gatekeeper) ApplyHeaders(w http.ResponseWriter, d Decision) {
	h := w.Header()

	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-XSS-Protection", "1; mode=block")
	h.Set("Referrer-Policy", g.config.Headers.ReferrerPolicy)
	h.Set("Content-Security-Policy", g.config.Headers.ContentSecurityPolicy)

	if d.RateLimit != nil && d.Action == ActionReject && d.Status == http.StatusTooManyRequests {
		retryAfter := d.RateLimit.Reset - nowUnix()
		if retryAfter < 0 {
			retryAfter = 0
		}
		h.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
		h.Set("X-RateLimit-Limit", strconv.Itoa(d.RateLimit.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(d.RateLimit.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(d.RateLimit.Reset, 10))
	}

	if d.Route == RouteAdminPage && d.Identity != nil && d.Allowed() {
		h.Set("X-User-Role", string(d.Identity.Role))
		h.Set(g.config.CSRF.HeaderName, d.Identity.CSRFToken)
	}
}
