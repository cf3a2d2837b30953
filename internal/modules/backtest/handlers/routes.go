package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers the backtest routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/portfolios/backtest", h.HandleBacktest)
	r.Post("/portfolios/backtest/chart", h.HandleBacktestChart)
}
