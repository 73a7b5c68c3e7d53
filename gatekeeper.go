package gatekeeper

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tekreview/gatekeeper/internal/rate"
	"github.com/tekreview/gatekeeper/password"
	"github.com/tekreview/gatekeeper/token"
)

// Gatekeeper defines a public type used by gatekeeper APIs.
//
// Gatekeeper instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Gatekeeper struct {
	config Config

	routes       *routeTable
	rateLimiter  *rate.Limiter
	tokens       *token.Manager
	passwordHash *password.Hasher
	userProvider UserProvider

	audit   *auditDispatcher
	metrics *Metrics
}

// Evaluate describes the evaluate operation and its observable behavior.
//
// Evaluate runs the full gatekeeping pipeline for one request and returns a
// terminal [Decision]. Stage order is fixed: identify, rate-check, classify,
// authenticate, authorize, CSRF-check, decorate. Each stage either
// short-circuits with a reject/redirect decision or hands off to the next.
// Evaluate never writes to the response itself.
func (g *Gatekeeper) Evaluate(ctx context.Context, r *http.Request) Decision {
	start := time.Now()
	d := g.evaluate(ctx, r)
	g.metrics.Observe(MetricEvaluateLatency, time.Since(start))
	return d
}

func (g *Gatekeeper) evaluate(ctx context.Context, r *http.Request) Decision {
	path := r.URL.Path

	// Stage 1: identify.
	clientIP := ClientIdentifier(r)
	ctx = WithClientIP(ctx, clientIP)

	// Stage 2: rate-check. The credential-exchange endpoint gets the
	// stricter auth policy; everything else shares the global policy.
	namespace, policy := "global", g.config.RateLimit.Global
	if g.routes.isAuthExchange(path) {
		namespace, policy = "auth", g.config.RateLimit.Auth
	}

	res, err := g.rateLimiter.Check(ctx, namespace, clientIP, rate.Policy{
		Limit:  policy.Limit,
		Window: policy.Window,
	})
	if err != nil {
		// Fail open: the permissive result stands in for the store.
		g.metrics.Inc(MetricStoreFailOpen)
		g.emitAudit(ctx, auditEventStoreFailOpen, true, "", path, err, nil)
	}
	status := &RateStatus{Limit: res.Limit, Remaining: res.Remaining, Reset: res.Reset}

	if !res.Allowed {
		g.metrics.Inc(MetricRequestThrottled)
		g.emitAudit(ctx, auditEventRequestThrottled, false, "", path, ErrRateLimited, func() map[string]string {
			return map[string]string{"namespace": namespace}
		})
		return Decision{
			Action:    ActionReject,
			Status:    http.StatusTooManyRequests,
			Code:      "rate_limited",
			Message:   "too many requests",
			RateLimit: status,
		}
	}

	// Stage 3: classify route.
	route := g.routes.classify(path)

	if route == RoutePublic {
		// Login-page guard: an already-authenticated visitor skips the
		// login form.
		if g.routes.isLoginPage(path) {
			if claims, _ := g.tokens.Verify(g.sessionFromRequest(r)); claims != nil {
				g.emitAudit(ctx, auditEventLoginGuard, true, claims.UserID(), path, nil, nil)
				return Decision{
					Action:    ActionRedirect,
					Status:    http.StatusTemporaryRedirect,
					Location:  g.routes.adminHome,
					Route:     route,
					Identity:  claims,
					RateLimit: status,
				}
			}
		}

		g.metrics.Inc(MetricRequestAllowed)
		return Decision{Action: ActionAllow, Route: route, RateLimit: status}
	}

	// Stage 4: authenticate.
	claims, err := g.tokens.Verify(g.sessionFromRequest(r))
	if err != nil {
		// Verifier errors are configuration faults; Build catches them,
		// so this branch is unreachable in a validated engine.
		return Decision{
			Action:  ActionReject,
			Status:  http.StatusInternalServerError,
			Code:    "internal_error",
			Message: "session verification unavailable",
			Route:   route,
		}
	}
	if claims == nil {
		g.metrics.Inc(MetricUnauthenticated)
		g.emitAudit(ctx, auditEventUnauthenticated, false, "", path, nil, nil)
		if route == RouteProtectedAPI {
			return Decision{
				Action:    ActionReject,
				Status:    http.StatusUnauthorized,
				Code:      "unauthenticated",
				Message:   "authentication required",
				Route:     route,
				RateLimit: status,
			}
		}
		return Decision{
			Action:    ActionRedirect,
			Status:    http.StatusTemporaryRedirect,
			Location:  g.routes.loginPath + "?callbackUrl=" + url.QueryEscape(path),
			Route:     route,
			RateLimit: status,
		}
	}

	// Stage 5: authorize.
	if claims.Role != token.RoleAdmin {
		g.metrics.Inc(MetricForbidden)
		g.emitAudit(ctx, auditEventRoleDenied, false, claims.UserID(), path, nil, func() map[string]string {
			return map[string]string{"role": string(claims.Role)}
		})
		if route == RouteProtectedAPI {
			return Decision{
				Action:    ActionReject,
				Status:    http.StatusForbidden,
				Code:      "forbidden",
				Message:   "admin role required",
				Route:     route,
				Identity:  claims,
				RateLimit: status,
			}
		}
		return Decision{
			Action:    ActionRedirect,
			Status:    http.StatusTemporaryRedirect,
			Location:  g.routes.homePath,
			Route:     route,
			Identity:  claims,
			RateLimit: status,
		}
	}

	// Stage 6: CSRF-check. Mutating methods only, and never on the
	// credential exchange itself (the client has no token yet).
	if isMutating(r.Method) && !g.routes.isAuthExchange(path) {
		supplied := r.Header.Get(g.config.CSRF.HeaderName)
		if supplied == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(claims.CSRFToken)) != 1 {
			g.metrics.Inc(MetricCSRFRejected)
			g.emitAudit(ctx, auditEventCSRFMismatch, false, claims.UserID(), path, nil, func() map[string]string {
				return map[string]string{"method": r.Method, "supplied": boolString(supplied != "")}
			})
			return Decision{
				Action:    ActionReject,
				Status:    http.StatusForbidden,
				Code:      "csrf_mismatch",
				Message:   "invalid anti-forgery token",
				Route:     route,
				Identity:  claims,
				RateLimit: status,
			}
		}
	}

	// Stage 7: pass. Header decoration happens in ApplyHeaders.
	g.metrics.Inc(MetricRequestAllowed)
	return Decision{Action: ActionAllow, Route: route, Identity: claims, RateLimit: status}
}

// sessionFromRequest extracts the raw session token: cookie first, then a
// bearer Authorization header for cookieless API clients.
func (g *Gatekeeper) sessionFromRequest(r *http.Request) string {
	if c, err := r.Cookie(g.config.Session.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func nowUnix() int64 {
	return time.Now().Unix()
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters and
// latency histogram.
func (g *Gatekeeper) MetricsSnapshot() MetricsSnapshot {
	if g == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return g.metrics.Snapshot()
}

// MetricValue returns a single counter value.
func (g *Gatekeeper) MetricValue(id MetricID) uint64 {
	if g == nil {
		return 0
	}
	return g.metrics.Value(id)
}

// AuditDropped reports how many audit events were dropped because the
// dispatcher buffer was full.
func (g *Gatekeeper) AuditDropped() uint64 {
	if g == nil {
		return 0
	}
	return g.audit.Dropped()
}

// Close drains and stops the audit dispatcher. The engine must not be used
// after Close.
func (g *Gatekeeper) Close() {
	if g == nil {
		return
	}
	g.audit.Close()
}
