package middleware

import (
	"fmt"
	"net/http"

	"github.com/redink/redink/internal/auth"
	"github.com/redink/redink/internal/model"
)

// RequireRole returns middleware that enforces a role requirement.
// Must be applied after Auth middleware. If multiple roles are
// provided, having ANY of them is sufficient.
func RequireRole(required ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeRoleError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			// Super users pass every role gate.
			if authCtx.Role == model.RoleSuper {
				next.ServeHTTP(w, r)
				return
			}

			for _, req := range required {
				if authCtx.Role == req {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeRoleError(w, http.StatusForbidden, "FORBIDDEN",
				fmt.Sprintf("Insufficient permissions. Required role: %s", required[0]))
		})
	}
}

// RequireSuper is a convenience middleware for super-user endpoints.
func RequireSuper() func(http.Handler) http.Handler {
	return RequireRole(model.RoleSuper)
}

// RequirePaid is a convenience middleware for paid-tier endpoints.
func RequirePaid() func(http.Handler) http.Handler {
	return RequireRole(model.RolePaid)
}

// writeRoleError writes a role-related error response.
func writeRoleError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(fmt.Sprintf(`{"error":{"code":"%s","message":"%s"}}`, code, message)))
}
