package policy

import (
	"log/slog"
	"net/http"

	"github.com/amplio-agency/amplio/internal/platform/httpx"
)

// Middleware wires permission checks into HTTP handlers.
type Middleware struct {
	Gate   *Gate
	Logger *slog.Logger
}

// Require ensures the current actor holds the permission before the request
// proceeds. The gate emits the audit record for the decision.
func (m Middleware) Require(resource Resource, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "actor identity required")
				return
			}
			decision := m.Gate.Check(r.Context(), actor, resource, action)
			if !decision.Allowed {
				if m.Logger != nil {
					m.Logger.Warn("permission denied",
						slog.String("role", string(actor.Role)),
						slog.String("permission", Key(resource, action)),
						slog.String("reason", decision.Reason))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperAdmin gates management operations reserved for the top role.
func (m Middleware) RequireSuperAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "actor identity required")
				return
			}
			if actor.Role != RoleSuperAdmin {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "reserved for super admins")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
