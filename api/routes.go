package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// setupRoutes wires the public site routes and the authenticated admin routes.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, startupTime time.Time) {
	// Public routes. Admin tokens are detected (not required) so the
	// dashboard can list unpublished projects through the same endpoints.
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(authMiddleware.detectAdmin)

		r.Get("/health", healthHandler(startupTime))
		r.Get("/projects", handlers.projectHandler.getAllProjects())
		r.Get("/projects/featured", handlers.projectHandler.getFeaturedProjects())
		r.Get("/projects/by-slug/{slug}", handlers.projectHandler.getProjectBySlug())
		r.Post("/projects/{projectID}/chat", handlers.chatHandler.chat())
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(authMiddleware.authenticate)

		r.Post("/projects", handlers.projectHandler.createProject())
		r.Patch("/projects/{projectID}", handlers.projectHandler.updateProject())
		r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())
		r.Patch("/projects/{projectID}/publish", handlers.projectHandler.publishProject())
		r.Patch("/projects/{projectID}/feature", handlers.projectHandler.featureProject())
	})
}

func healthHandler(startupTime time.Time) http.HandlerFunc {
	responder := NewResponder(log.Logger)
	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteJSON(w, map[string]any{
			"status": "ok",
			"uptime": time.Since(startupTime).String(),
		})
	}
}
