package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/lead-management/internal/auth"
	"github.com/frahmantamala/lead-management/internal/hierarchy"
)

// RequireRoles creates a middleware that lets the request through only when
// the authenticated user's effective role is one of the given roles.
func RequireRoles(roles ...hierarchy.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			effective := user.EffectiveRole()
			allowed := false
			for _, role := range roles {
				if effective == role {
					allowed = true
					break
				}
			}

			if !allowed {
				slog.Warn("access denied: role not permitted",
					"user_id", user.ID,
					"effective_role", effective,
					"required_roles", roles)
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireManagement admits superadmins, managers and supervisors; agents are
// rejected. Used for team reports and user administration surfaces.
func RequireManagement() func(http.Handler) http.Handler {
	return RequireRoles(hierarchy.RoleSuperadmin, hierarchy.RoleManager, hierarchy.RoleSupervisor)
}
