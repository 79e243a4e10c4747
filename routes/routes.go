package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/taskdeck/taskdeck/app"
	"github.com/taskdeck/taskdeck/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Every request passes through token inspection; allow-listed paths
	// skip it and everything else gets a principal or a recorded failure.
	r.Use(deps.AuthMiddleware.Authenticate)

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	// Federated login flow
	r.Get("/oauth2/authorize/{provider}", handlers.OAuthAuthorizeHandler(deps))
	r.Get("/login/oauth2/code/{provider}", handlers.OAuthCallbackHandler(deps))

	// Account endpoints
	r.Route("/users", func(r chi.Router) {
		r.Post("/signup", handlers.SignupHandler(deps))
		r.Post("/login", handlers.LoginHandler(deps))

		r.Route("/me", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequirePrincipal)
			r.Get("/", handlers.GetCurrentUserHandler(deps))
			r.Put("/", handlers.UpdateCurrentUserHandler(deps))
			r.Delete("/", handlers.DeleteCurrentUserHandler(deps))
		})
	})

	// Task endpoints
	r.Route("/todos", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequirePrincipal)
		r.Get("/", handlers.ListTasksHandler(deps))
		r.Post("/", handlers.CreateTaskHandler(deps))
		r.Get("/search", handlers.SearchTasksHandler(deps))
		r.Get("/{id}", handlers.GetTaskHandler(deps))
		r.Put("/{id}", handlers.UpdateTaskHandler(deps))
		r.Delete("/{id}", handlers.DeleteTaskHandler(deps))
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"NOT_FOUND","message":"endpoint not found"}`))
	})

	return r
}
