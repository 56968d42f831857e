package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all hedging routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/hedging", func(r chi.Router) {
		r.Post("/strategy", h.HandleBuildStrategy)
		r.Get("/instruments", h.HandleGetInstruments)
		r.Get("/regime", h.HandleGetRegime)
		r.Get("/regime/history", h.HandleGetRegimeHistory)
	})
}
