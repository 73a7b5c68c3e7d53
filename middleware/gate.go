package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tekreview/gatekeeper"
	"github.com/tekreview/gatekeeper/token"
)

type identityContextKey struct{}

// IdentityFromContext returns the verified session claims injected by
// [Gate], if the request carried a valid session.
func IdentityFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(identityContextKey{}).(*token.Claims)
	return claims, ok
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Gate wraps next with the full gatekeeping pipeline. Every response,
// including rejections and redirects, carries the engine's security headers.
func Gate(gk *gatekeeper.Gatekeeper) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gk == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			decision := gk.Evaluate(r.Context(), r)
			gk.ApplyHeaders(w, decision)

			switch decision.Action {
			case gatekeeper.ActionReject:
				writeJSONError(w, decision)
				return
			case gatekeeper.ActionRedirect:
				status := decision.Status
				if status == 0 {
					status = http.StatusTemporaryRedirect
				}
				http.Redirect(w, r, decision.Location, status)
				return
			}

			ctx := gatekeeper.WithClientIP(r.Context(), gatekeeper.ClientIdentifier(r))
			if decision.Identity != nil {
				ctx = context.WithValue(ctx, identityContextKey{}, decision.Identity)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, d gatekeeper.Decision) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(d.Status)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error:   d.Code,
		Message: d.Message,
	})
}
