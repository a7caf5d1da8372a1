package calculator

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/yuankika/final-computer/internal/handlers"
	"github.com/yuankika/final-computer/internal/observability"
)

// RegisterRoutes mounts the JSON API under /api/v1. Browsers on other
// origins may call it.
func RegisterRoutes(r chi.Router, api *API) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", observability.RequestIDHeader},
			ExposedHeaders:   []string{observability.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			handlers.WriteError(w, http.StatusNotFound, "not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			handlers.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		})

		r.Post("/calculate", api.Calculate)
	})
}
