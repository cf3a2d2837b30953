package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Version is reported by the health endpoint
const Version = "0.1.0"

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Service  string `json:"service"`
	Database string `json:"database"`
	Driver   string `json:"driver,omitempty"`
}

// handleHealth reports liveness plus database reachability.
// An unreachable database degrades the status to 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "healthy",
		Version:  Version,
		Service:  "portfolio-advisor",
		Database: "ok",
	}

	if s.container == nil {
		resp.Database = "unconfigured"
		s.writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Driver = s.container.DriverName()

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.container.HealthCheck(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Database health check failed")
		resp.Status = "degraded"
		resp.Database = "unreachable"
		s.writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
