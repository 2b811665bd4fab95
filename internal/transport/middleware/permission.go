package middleware

import (
	"net/http"

	coreUser "github.com/frahmantamala/inventory-management/internal/core/user"
	"github.com/frahmantamala/inventory-management/internal/session"
	"github.com/frahmantamala/inventory-management/pkg/logger"
)

// RequireRole gates a page on the session role. Anonymous and pending
// sessions go to the login page; a session with another role goes to its
// own landing page.
func RequireRole(role coreUser.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := session.StateFromContext(r.Context())

			if !st.IsAuthenticated() {
				http.Redirect(w, r, coreUser.LoginPath, http.StatusFound)
				return
			}

			if st.Principal.Role != role {
				logger.From(r.Context()).Warn("access denied: role mismatch",
					"required_role", role,
					"session_role", st.Principal.Role,
					"username", st.Principal.Username)
				http.Redirect(w, r, coreUser.LandingPath(st.Principal.Role), http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
