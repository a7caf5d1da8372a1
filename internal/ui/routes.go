package ui

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.Index)
	r.Post("/calculate", h.Calculate)
	r.Post("/operator", h.Operator)
	r.Post("/reset", h.Reset)
}
