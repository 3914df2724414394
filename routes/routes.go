package routes

import (
	"net/http"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/app"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/middleware"
	"github.com/cybe4sent1nel/CODERIPPER-sub001/utils"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestContext)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	if timeout := deps.Config.Server.RequestTimeout; timeout > 0 {
		r.Use(chimw.Timeout(timeout))
	}

	// CORS middleware
	origins := deps.Config.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:         300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	if deps.Prometheus != nil {
		r.Method(http.MethodGet, "/metrics", deps.Prometheus.Handler())
	}

	// API v1 routes
	r.Route("/api/v1/ai", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware)
		}

		ai := deps.AIHandler
		r.Post("/", ai.HandleExecute)
		r.Get("/", ai.HandleModels)
		r.Get("/models", ai.HandleModels)
		r.Get("/executions", ai.HandleListExecutions)
		r.Get("/executions/{id}", ai.HandleGetExecution)
		r.MethodNotAllowed(ai.HandleMethodNotAllowed)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}
