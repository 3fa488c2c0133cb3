package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rrens/workspace-insights/internal/api/handler"
	customMiddleware "github.com/Rrens/workspace-insights/internal/api/middleware"
	"github.com/Rrens/workspace-insights/internal/config"
	"github.com/Rrens/workspace-insights/internal/llm"
	"github.com/Rrens/workspace-insights/internal/service"
)

// Deps are what the router needs from the composed application
type Deps struct {
	Config   *config.Config
	Services *service.Services
	LLM      *llm.Router

	// Checks are pinged by the readiness endpoint
	Checks map[string]handler.Pinger

	// Limiter is nil when rate limiting is disabled
	Limiter customMiddleware.RateLimiter
}

// NewRouter creates and configures the HTTP router
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	svc := d.Services

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Server.MiddlewareTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	}

	allowedOrigins := cfg.Server.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(customMiddleware.Metrics)

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(svc.Auth, cfg.Auth.RedirectURL)
	workspaceHandler := handler.NewWorkspaceHandler(svc.Workspaces, svc.Chat)
	bindingHandler := handler.NewBindingHandler(svc.Bindings, svc.Artifacts, svc.ActionItems)
	artifactHandler := handler.NewArtifactHandler(svc.Artifacts, svc.ActionItems, cfg.Artifacts.MaxUploadBytes)
	suggestionHandler := handler.NewSuggestionHandler(svc.Suggestions)
	widgetHandler := handler.NewWidgetHandler(svc.Widgets)
	taskHandler := handler.NewTaskHandler(svc.Tasks, svc.ActionItems)

	authMiddleware := customMiddleware.NewAuthMiddleware(svc.Auth)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(d.Checks))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			if d.Limiter != nil {
				r.Use(customMiddleware.NewRateLimitMiddleware(d.Limiter).Limit)
			}

			r.Get("/llm-providers", handler.ListLLMProviders(d.LLM))

			r.Route("/auth", func(r chi.Router) {
				r.Get("/google/login", authHandler.Login)
				r.Get("/google/callback", authHandler.Callback)

				r.Group(func(r chi.Router) {
					r.Use(customMiddleware.RequireIdentity)
					r.Post("/logout", authHandler.Logout)
					r.Get("/me", authHandler.Me)
				})
			})

			r.Route("/workspaces", func(r chi.Router) {
				r.Get("/", workspaceHandler.List)
				r.Post("/", workspaceHandler.Create)

				r.Route("/{workspaceID}", func(r chi.Router) {
					r.Get("/", workspaceHandler.Get)
					r.Put("/", workspaceHandler.Update)
					r.Delete("/", workspaceHandler.Delete)
					r.Post("/chat", workspaceHandler.Chat)

					r.Get("/bindings", bindingHandler.List)
					r.Post("/bindings", bindingHandler.Create)

					r.Get("/suggestions", suggestionHandler.List)
					r.Post("/suggestions/regenerate", suggestionHandler.Regenerate)

					r.Get("/widgets", widgetHandler.List)
					r.Post("/widgets", widgetHandler.Create)

					r.Get("/tasks", taskHandler.List)
					r.Post("/tasks", taskHandler.Create)
					r.Post("/tasks/promote", taskHandler.Promote)
				})
			})

			r.Route("/bindings/{bindingID}", func(r chi.Router) {
				r.Get("/", bindingHandler.Get)
				r.Put("/", bindingHandler.Update)
				r.Delete("/", bindingHandler.Delete)
				r.Post("/test", bindingHandler.Test)
				r.Get("/browse", bindingHandler.Browse)
				r.Post("/action-items", bindingHandler.ActionItems)

				r.Get("/artifacts", artifactHandler.List)
				r.Post("/artifacts", artifactHandler.Create)
				r.Post("/artifacts/import", artifactHandler.Import)
				r.Post("/artifacts/upload", artifactHandler.Upload)
			})

			r.Route("/artifacts/{artifactID}", func(r chi.Router) {
				r.Get("/", artifactHandler.Get)
				r.Delete("/", artifactHandler.Delete)
				r.Post("/summarize", artifactHandler.Summarize)
				r.Post("/action-items", artifactHandler.ActionItems)
			})

			r.Route("/suggestions/{suggestionID}", func(r chi.Router) {
				r.Delete("/", suggestionHandler.Delete)
				r.Post("/accept", suggestionHandler.Accept)
			})

			r.Post("/widgets/reorder", widgetHandler.Reorder)
			r.Route("/widgets/{widgetID}", func(r chi.Router) {
				r.Get("/", widgetHandler.Get)
				r.Patch("/", widgetHandler.Patch)
				r.Delete("/", widgetHandler.Delete)
				r.Post("/refresh", widgetHandler.Refresh)
			})

			r.Route("/tasks/{taskID}", func(r chi.Router) {
				r.Patch("/", taskHandler.Patch)
				r.Delete("/", taskHandler.Delete)
			})
		})
	})

	return r
}
