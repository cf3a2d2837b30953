package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers the risk assessment routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/risk-assessment", func(r chi.Router) {
		r.Get("/questions", h.HandleGetQuestions)
		r.Post("/calculate", h.HandleCalculate)
	})
}
