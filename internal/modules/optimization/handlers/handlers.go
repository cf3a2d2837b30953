// Package handlers provides HTTP handlers for portfolio generation.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/optimization"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const generateFailedMessage = "ポートフォリオの生成に失敗しました。しばらく時間をおいて再度お試しください。"

// Optimizer builds portfolios
type Optimizer interface {
	Optimize(ctx context.Context, req optimization.Request) (*optimization.Portfolio, error)
}

// Handler handles portfolio generation requests
type Handler struct {
	optimizer Optimizer
	log       zerolog.Logger
}

// NewHandler creates a new portfolio generation handler
func NewHandler(optimizer Optimizer, log zerolog.Logger) *Handler {
	return &Handler{
		optimizer: optimizer,
		log:       log.With().Str("handler", "optimization").Logger(),
	}
}

// RegisterRoutes registers the generation route under /portfolios
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/portfolios/generate", h.HandleGenerate)
}

type constraintsRequest struct {
	MaxSingleAssetWeight *float64           `json:"max_single_asset_weight"`
	IncludeMarkets       []domain.Market    `json:"include_markets"`
	IncludeAssetTypes    []domain.AssetType `json:"include_asset_types"`
}

type generateRequest struct {
	InvestmentAmount  *int64               `json:"investment_amount"`
	Constraints       *constraintsRequest  `json:"constraints"`
	RiskTolerance     domain.RiskTolerance `json:"risk_tolerance"`
	InvestmentHorizon string               `json:"investment_horizon"`
	Strategy          domain.Strategy      `json:"strategy"`
	Currency          string               `json:"currency"`
	RiskScore         int                  `json:"risk_score"`
}

func (req generateRequest) validate() string {
	if req.RiskScore < 1 || req.RiskScore > 10 {
		return "risk_score must be between 1 and 10"
	}
	if !req.RiskTolerance.Valid() {
		return "risk_tolerance must be one of conservative, moderate, aggressive"
	}
	switch req.InvestmentHorizon {
	case "short", "medium", "long":
	default:
		return "investment_horizon must be one of short, medium, long"
	}
	if c := req.Constraints; c != nil {
		if c.MaxSingleAssetWeight != nil && (*c.MaxSingleAssetWeight <= 0 || *c.MaxSingleAssetWeight > 1) {
			return "max_single_asset_weight must be in (0, 1]"
		}
		for _, m := range c.IncludeMarkets {
			if !m.Valid() {
				return "include_markets contains an unknown market"
			}
		}
		for _, t := range c.IncludeAssetTypes {
			if !t.Valid() {
				return "include_asset_types contains an unknown asset type"
			}
		}
	}
	return ""
}

func (req generateRequest) toRequest() optimization.Request {
	out := optimization.Request{
		RiskScore:         req.RiskScore,
		RiskTolerance:     req.RiskTolerance,
		InvestmentHorizon: req.InvestmentHorizon,
		Strategy:          req.Strategy,
		InvestmentAmount:  req.InvestmentAmount,
		Currency:          req.Currency,
	}
	if out.Strategy == "" {
		out.Strategy = domain.StrategyAuto
	}
	if out.Currency == "" {
		out.Currency = string(domain.CurrencyJPY)
	}
	if c := req.Constraints; c != nil {
		constraints := optimization.DefaultConstraints()
		if c.MaxSingleAssetWeight != nil {
			constraints.MaxSingleAssetWeight = *c.MaxSingleAssetWeight
		}
		if c.IncludeMarkets != nil {
			constraints.IncludeMarkets = c.IncludeMarkets
		}
		if c.IncludeAssetTypes != nil {
			constraints.IncludeAssetTypes = c.IncludeAssetTypes
		}
		out.Constraints = &constraints
	}
	return out
}

// HandleGenerate handles POST /api/v1/portfolios/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	portfolio, err := h.optimizer.Optimize(r.Context(), req.toRequest())
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			h.writeError(w, http.StatusBadRequest, ve.Message)
			return
		}
		h.log.Error().Err(err).Msg("Portfolio generation failed")
		h.writeError(w, http.StatusInternalServerError, generateFailedMessage)
		return
	}

	h.writeJSON(w, http.StatusOK, portfolio)
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
