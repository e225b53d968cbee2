package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/neuralarc-ai/salak/internal/config"
	"github.com/neuralarc-ai/salak/internal/identity"
	"github.com/neuralarc-ai/salak/internal/middleware"
	"github.com/neuralarc-ai/salak/internal/services"
	"github.com/neuralarc-ai/salak/internal/supabase"
)

// Dependencies holds everything the router needs.
type Dependencies struct {
	Config        *config.Config
	DB            *pgxpool.Pool
	Redis         *redis.Client
	Logger        *slog.Logger
	Resolver      *identity.Resolver
	Supabase      *supabase.Client
	UserService   *services.UserService
	APIKeyService *services.APIKeyService
	TokenService  *services.TokenService
	AuditService  *services.AuditService
}

// NewRouter creates and configures the HTTP router.
func NewRouter(deps *Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Metrics())
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimiddleware.Timeout(deps.Config.Server.RequestTimeout))
	r.Use(middleware.SecurityHeaders(deps.Config.IsProduction()))
	r.Use(middleware.MaxBodySize(deps.Config.Security.MaxRequestBodySize))

	rateLimiter := middleware.NewRateLimiter(
		deps.Redis,
		deps.Config.RateLimit.Requests,
		deps.Config.RateLimit.Window,
	)

	healthHandler := NewHealthHandler(deps.DB, deps.Redis)
	authHandler := NewAuthHandler(
		deps.UserService,
		deps.TokenService,
		deps.AuditService,
		deps.Supabase,
		deps.Config.IsProduction(),
		deps.Config.Security.MaxRequestBodySize,
	)
	authHandler.SetResolver(deps.Resolver)
	keyHandler := NewAPIKeyHandler(deps.APIKeyService, deps.AuditService, deps.Config.Security.MaxRequestBodySize)
	adminHandler := NewAdminHandler(deps.AuditService)

	// Health checks and metrics, no auth and no rate limit.
	r.Get("/health", healthHandler.Liveness)
	r.Get("/ready", healthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(rateLimiter))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(deps.Resolver))
				r.Get("/me", authHandler.Me)
				r.Patch("/me", authHandler.UpdateMe)
				r.Post("/logout", authHandler.Logout)
			})
		})

		r.Route("/api-keys", func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Resolver))
			r.Get("/", keyHandler.List)
			r.Post("/", keyHandler.Create)
			r.Post("/{id}/reveal", keyHandler.Reveal)
			r.Delete("/{id}", keyHandler.Revoke)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Resolver))
			r.Use(middleware.RequireAdmin())
			r.Get("/logs", adminHandler.Logs)
		})
	})

	r.NotFound(NotFoundHandler)
	r.MethodNotAllowed(MethodNotAllowedHandler)

	return r
}
