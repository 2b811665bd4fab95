package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/inventory-management/internal/auth"
	coreUser "github.com/frahmantamala/inventory-management/internal/core/user"
	"github.com/frahmantamala/inventory-management/internal/dashboard"
	"github.com/frahmantamala/inventory-management/internal/session"
	"github.com/frahmantamala/inventory-management/internal/transport"
	"github.com/frahmantamala/inventory-management/internal/transport/middleware"
	"github.com/frahmantamala/inventory-management/internal/transport/swagger"
	"github.com/frahmantamala/inventory-management/internal/user"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Health    *HealthHandler
	Auth      *auth.Handler
	User      *user.Handler
	Dashboard *dashboard.Handler
}

type Options struct {
	SpecPath       string
	MetricsEnabled bool
	MetricsPath    string
}

func RegisterAllRoutes(router *chi.Mux, sessions *session.Manager, h Handlers, opts Options, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.Metrics)

	router.Get(swagger.SpecRoute, func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, opts.SpecPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	if opts.MetricsEnabled {
		router.Handle(opts.MetricsPath, promhttp.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.healthCheckHandler)
		r.Get("/ping", h.Health.pingHandler)
	})

	// Everything below is session aware.
	router.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		r.Use(middleware.Identity)

		r.Get(coreUser.LoginPath, h.Auth.LoginPage)
		r.Post(coreUser.LoginPath, transport.HandlerSwitch("handler", map[string]http.HandlerFunc{
			"UserLogin":      h.Auth.UserLogin,
			"AdminLogin":     h.Auth.AdminLogin,
			"VerifyEmail":    h.Auth.VerifyEmail,
			"Logout":         h.Auth.Logout,
			"CreateAdminKey": h.Auth.CreateAdminKey,
			"ForgotPassword": h.Auth.ForgotPassword,
			"CreateAccount":  h.User.CreateAccount,
		}))
		r.Post("/reset-password", h.Auth.ResetPassword)

		r.Get("/register", h.User.RegisterPage)
		r.Post("/register", h.User.CreateAccount)

		r.Route(coreUser.AdminDashboardPath, func(ar chi.Router) {
			ar.Use(middleware.RequireRole(coreUser.RoleAdmin))

			ar.Get("/", h.Dashboard.AdminDashboard)
			ar.Post("/products", h.Dashboard.ProductWrites())
			ar.Post("/users", h.Dashboard.UserWrites())
			ar.Post("/admins", h.Dashboard.AdminWrites())
			ar.Post("/borrow-requests", h.Dashboard.BorrowWrites())
		})

		r.Route(coreUser.UserLandingPath, func(ur chi.Router) {
			ur.Use(middleware.RequireRole(coreUser.RoleUser))

			ur.Get("/", h.Dashboard.UserView)
			ur.Post("/borrow", h.Dashboard.RequestBorrow)
		})
	})
}
