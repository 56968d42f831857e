package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all market data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/market", func(r chi.Router) {
		r.Get("/snapshot", h.HandleGetSnapshot)

		if h.store != nil {
			r.Post("/snapshot", h.HandleSaveSnapshot)
			r.Post("/prices", h.HandleAppendPrices)
		}
	})
}
