package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/inventory-management/internal/auth"
	"github.com/frahmantamala/inventory-management/internal/dashboard"
	"github.com/frahmantamala/inventory-management/internal/transport"
	"github.com/frahmantamala/inventory-management/internal/transport/rest"
	"github.com/frahmantamala/inventory-management/internal/transport/swagger"
	"github.com/frahmantamala/inventory-management/internal/user"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var specPath string

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func init() {
	httpServerCmd.Flags().StringVar(&specPath, "spec", "./api/openapi.yml", "OpenAPI document served at /openapi.yml")
}

func startHTTPServer() {
	ctx := context.Background()
	deps, err := initializeDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if _, err := swagger.LoadSpec(ctx, specPath); err != nil {
		deps.Logger.Error("openapi spec rejected", "error", err)
		deps.Close()
		os.Exit(1)
	}

	router := setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr, "env", deps.Config.App.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			deps.Close()
			os.Exit(1)
		}
	}

	deps.Close()
	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) *chi.Mux {
	base := transport.NewBaseHandler(deps.Logger)
	svc := deps.Services

	// keep a nil *redis.Client out of the pinger interface
	var health *rest.HealthHandler
	if deps.Redis != nil {
		health = rest.NewHealthHandler(deps.SQL, deps.Redis)
	} else {
		health = rest.NewHealthHandler(deps.SQL, nil)
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, deps.Sessions, rest.Handlers{
		Health:    health,
		Auth:      auth.NewHandler(base, svc.Auth, deps.Sessions),
		User:      user.NewHandler(base, svc.User),
		Dashboard: dashboard.NewHandler(base, svc.Dashboard, svc.Product, svc.User, svc.Admin, svc.Borrow),
	}, rest.Options{
		SpecPath:       specPath,
		MetricsEnabled: deps.Config.Observability.Metrics.Enabled,
		MetricsPath:    deps.Config.Observability.Metrics.Path,
	}, deps.Logger)
	return router
}
