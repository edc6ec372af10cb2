package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all screening routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/screening", func(r chi.Router) {
		r.Get("/kept", h.HandleGetKept)
		r.Get("/eliminated", h.HandleGetEliminated)
		r.Get("/report", h.HandleGetReport)
		r.Post("/run", h.HandleRun)
	})
}
