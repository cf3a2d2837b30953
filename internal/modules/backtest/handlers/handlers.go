// Package handlers provides HTTP handlers for historical backtests.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/backtest"
	"github.com/rs/zerolog"
)

const (
	backtestFailedMessage = "バックテストの実行に失敗しました。しばらく時間をおいて再度お試しください。"
	chartFailedMessage    = "チャートの生成に失敗しました。"
)

// Runner executes backtests
type Runner interface {
	Run(ctx context.Context, req backtest.Request) (*backtest.Result, error)
}

// Handler handles backtest requests
type Handler struct {
	runner Runner
	log    zerolog.Logger
}

// NewHandler creates a new backtest handler
func NewHandler(runner Runner, log zerolog.Logger) *Handler {
	return &Handler{
		runner: runner,
		log:    log.With().Str("handler", "backtest").Logger(),
	}
}

type backtestRequest struct {
	InitialInvestment *float64                    `json:"initial_investment"`
	PeriodYears       *int                        `json:"period_years"`
	Rebalance         backtest.RebalanceFrequency `json:"rebalance_frequency"`
	Allocations       []backtest.TargetWeight     `json:"allocations"`
}

func (req backtestRequest) validate() string {
	if len(req.Allocations) == 0 {
		return "allocations must contain at least one item"
	}
	for _, a := range req.Allocations {
		if a.Symbol == "" {
			return "allocation symbol is required"
		}
		if a.Weight < 0 || a.Weight > 1 {
			return "allocation weight must be between 0 and 1"
		}
	}
	if req.PeriodYears != nil && (*req.PeriodYears < 1 || *req.PeriodYears > 20) {
		return "period_years must be between 1 and 20"
	}
	if req.InitialInvestment != nil && *req.InitialInvestment <= 0 {
		return "initial_investment must be positive"
	}
	if req.Rebalance != "" && !req.Rebalance.Valid() {
		return "rebalance_frequency must be one of monthly, quarterly, annually, none"
	}
	return ""
}

func (req backtestRequest) toRequest() backtest.Request {
	out := backtest.Request{
		Allocations:       req.Allocations,
		Rebalance:         req.Rebalance,
		PeriodYears:       backtest.DefaultPeriodYears,
		InitialInvestment: backtest.DefaultInitialInvestment,
	}
	if out.Rebalance == "" {
		out.Rebalance = backtest.RebalanceQuarterly
	}
	if req.PeriodYears != nil {
		out.PeriodYears = *req.PeriodYears
	}
	if req.InitialInvestment != nil {
		out.InitialInvestment = *req.InitialInvestment
	}
	return out
}

// run decodes, validates and executes; it writes the error response itself
// and returns nil in that case.
func (h *Handler) run(w http.ResponseWriter, r *http.Request) *backtest.Result {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return nil
	}
	if msg := req.validate(); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return nil
	}

	res, err := h.runner.Run(r.Context(), req.toRequest())
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			h.writeError(w, http.StatusBadRequest, ve.Message)
			return nil
		}
		h.log.Error().Err(err).Msg("Backtest failed")
		h.writeError(w, http.StatusInternalServerError, backtestFailedMessage)
		return nil
	}
	return res
}

// HandleBacktest handles POST /api/v1/portfolios/backtest
func (h *Handler) HandleBacktest(w http.ResponseWriter, r *http.Request) {
	res := h.run(w, r)
	if res == nil {
		return
	}

	h.writeJSON(w, http.StatusOK, res)
}

// HandleBacktestChart handles POST /api/v1/portfolios/backtest/chart
func (h *Handler) HandleBacktestChart(w http.ResponseWriter, r *http.Request) {
	res := h.run(w, r)
	if res == nil {
		return
	}

	png, err := backtest.RenderChart(res)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to render backtest chart")
		h.writeError(w, http.StatusInternalServerError, chartFailedMessage)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.log.Error().Err(err).Msg("Failed to write chart response")
	}
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
