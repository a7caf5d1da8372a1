package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yuankika/final-computer/internal/calculator"
	"github.com/yuankika/final-computer/internal/handlers"
	"github.com/yuankika/final-computer/internal/observability"
	"github.com/yuankika/final-computer/internal/ui"
)

func NewRouter(page *ui.Handler, api *calculator.API) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	ui.RegisterRoutes(r, page)
	calculator.RegisterRoutes(r, api)

	return r
}
