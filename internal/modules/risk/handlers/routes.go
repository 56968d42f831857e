package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all risk routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/risk", func(r chi.Router) {
		r.Post("/var", h.HandleVaR)
		r.Get("/confidence-levels", h.HandleConfidenceLevels)
		r.Post("/hedge-ratio", h.HandleHedgeRatio)
		r.Post("/portfolio", h.HandlePortfolioRisk)
	})
}
