// Package handlers provides HTTP handlers for portfolio explanations and usage.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/advisor"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	explainFailedMessage = "ポートフォリオの説明生成に失敗しました。"
	usageFailedMessage   = "利用状況の取得に失敗しました。"
)

// Advisor explains portfolios and reports usage
type Advisor interface {
	Explain(ctx context.Context, in advisor.ExplainInput) (string, error)
	Usage(ctx context.Context) (*advisor.UsageSummary, error)
}

// Handler handles explanation and usage requests
type Handler struct {
	advisor Advisor
	log     zerolog.Logger
}

// NewHandler creates a new advisor handler
func NewHandler(a Advisor, log zerolog.Logger) *Handler {
	return &Handler{
		advisor: a,
		log:     log.With().Str("handler", "advisor").Logger(),
	}
}

// RegisterRoutes registers the explain and usage routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/portfolios/explain", h.HandleExplain)
	r.Get("/usage", h.HandleUsage)
}

type explainRequest struct {
	Metrics       *advisor.Metrics     `json:"metrics"`
	Strategy      string               `json:"strategy"`
	RiskTolerance string               `json:"risk_tolerance"`
	Allocations   []advisor.Allocation `json:"allocations"`
}

type explainResponse struct {
	Explanation string `json:"explanation"`
}

// HandleExplain handles POST /api/v1/portfolios/explain
func (h *Handler) HandleExplain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	text, err := h.advisor.Explain(r.Context(), advisor.ExplainInput{
		Strategy:      req.Strategy,
		RiskTolerance: req.RiskTolerance,
		Allocations:   req.Allocations,
		Metrics:       req.Metrics,
	})
	if err != nil {
		var ve *domain.ValidationError
		var be *advisor.BudgetExceededError
		switch {
		case errors.As(err, &ve):
			h.writeError(w, http.StatusBadRequest, ve.Message)
		case errors.As(err, &be):
			h.writeError(w, http.StatusTooManyRequests, be.Message)
		case errors.Is(err, advisor.ErrRateLimited):
			h.writeError(w, http.StatusTooManyRequests, err.Error())
		default:
			h.log.Error().Err(err).Msg("Portfolio explanation failed")
			h.writeError(w, http.StatusInternalServerError, explainFailedMessage)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, explainResponse{Explanation: text})
}

// HandleUsage handles GET /api/v1/usage
func (h *Handler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	summary, err := h.advisor.Usage(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load usage summary")
		h.writeError(w, http.StatusInternalServerError, usageFailedMessage)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
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
