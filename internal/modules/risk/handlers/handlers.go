// Package handlers provides HTTP handlers for the risk assessment questionnaire.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aristath/portfolio-advisor/internal/modules/risk"
	"github.com/rs/zerolog"
)

// Handler handles risk assessment HTTP requests
type Handler struct {
	profiler *risk.Profiler
	log      zerolog.Logger
}

// NewHandler creates a new risk assessment handler
func NewHandler(profiler *risk.Profiler, log zerolog.Logger) *Handler {
	return &Handler{
		profiler: profiler,
		log:      log.With().Str("handler", "risk").Logger(),
	}
}

type calculateRequest struct {
	Answers []risk.Answer `json:"answers"`
}

// HandleGetQuestions handles GET /api/v1/risk-assessment/questions
func (h *Handler) HandleGetQuestions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"questions": h.profiler.Questions(),
	})
}

// HandleCalculate handles POST /api/v1/risk-assessment/calculate
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if want := h.profiler.QuestionCount(); len(req.Answers) != want {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("answers must contain exactly %d items", want))
		return
	}

	profile := h.profiler.Calculate(req.Answers)
	h.log.Debug().
		Int("risk_score", profile.RiskScore).
		Str("risk_tolerance", string(profile.RiskTolerance)).
		Msg("Calculated risk profile")

	h.writeJSON(w, http.StatusOK, profile)
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
