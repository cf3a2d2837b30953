// Package handlers provides HTTP handlers for market data.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/market"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// MarketService provides market overview data
type MarketService interface {
	Summary(ctx context.Context) (*market.Summary, error)
	Indicators(ctx context.Context) ([]domain.Indicator, error)
}

// Handler handles market data requests
type Handler struct {
	service MarketService
	log     zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(service MarketService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "market").Logger(),
	}
}

// RegisterRoutes registers the market routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/market", func(r chi.Router) {
		r.Get("/summary", h.HandleSummary)
		r.Get("/indicators", h.HandleIndicators)
	})
}

// HandleSummary handles GET /api/v1/market/summary
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build market summary")
		h.writeError(w, http.StatusInternalServerError, "Failed to load market summary")
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

type indicatorResponse struct {
	Currency      *string `json:"currency"`
	IndicatorType string  `json:"indicator_type"`
	IndicatorName string  `json:"indicator_name"`
	AsOf          string  `json:"as_of"`
	Source        string  `json:"source"`
	Value         float64 `json:"value"`
}

// HandleIndicators handles GET /api/v1/market/indicators
func (h *Handler) HandleIndicators(w http.ResponseWriter, r *http.Request) {
	inds, err := h.service.Indicators(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load indicators")
		h.writeError(w, http.StatusInternalServerError, "Failed to load indicators")
		return
	}

	out := make([]indicatorResponse, len(inds))
	for i, ind := range inds {
		out[i] = indicatorResponse{
			IndicatorType: string(ind.Type),
			IndicatorName: ind.Name,
			Value:         ind.Value,
			AsOf:          ind.Date.Format("2006-01-02"),
			Source:        ind.Source,
		}
		if ind.Currency != "" {
			c := ind.Currency
			out[i].Currency = &c
		}
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
