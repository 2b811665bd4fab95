package middleware

import (
	"net/http"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/session"
	"github.com/frahmantamala/inventory-management/pkg/logger"
)

// Identity annotates the request context with the client IP and, for
// authenticated sessions, the username and role. Must run after the session
// middleware.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := internal.ContextWithClientIP(r.Context(), internal.ClientIP(r))

		st := session.StateFromContext(ctx)
		if st.IsAuthenticated() {
			ctx = logger.With(ctx, "username", st.Principal.Username, "role", string(st.Principal.Role))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
