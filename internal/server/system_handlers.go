package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/portfolio-advisor/internal/di"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers serves operational status endpoints
type SystemHandlers struct {
	container *di.Container
	startedAt time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates system handlers over container
func NewSystemHandlers(container *di.Container, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		container: container,
		startedAt: time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// DatabaseStatus reports database reachability
type DatabaseStatus struct {
	Driver  string `json:"driver"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// SystemStatusResponse is returned by GET /api/system/status
type SystemStatusResponse struct {
	Status        string         `json:"status"`
	GoVersion     string         `json:"go_version"`
	Database      DatabaseStatus `json:"database"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	CPUPercent    float64        `json:"cpu_percent"`
	MemoryPercent float64        `json:"memory_percent"`
	Goroutines    int            `json:"goroutines"`
}

// DatabaseStatsResponse is returned by GET /api/system/database/stats
type DatabaseStatsResponse struct {
	Driver        string  `json:"driver"`
	SizeMB        float64 `json:"size_mb"`
	WALSizeMB     float64 `json:"wal_size_mb"`
	PageCount     int64   `json:"page_count"`
	FreelistCount int64   `json:"freelist_count"`
}

// HandleSystemStatus returns process, host and database status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	db := DatabaseStatus{Driver: h.container.DriverName(), Healthy: true}
	if err := h.container.HealthCheck(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Database health check failed")
		db.Healthy = false
		db.Error = err.Error()
	}

	cpuPercent, memPercent := h.getSystemStats()
	status := "healthy"
	if !db.Healthy {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, SystemStatusResponse{
		Status:        status,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Goroutines:    runtime.NumGoroutine(),
		GoVersion:     runtime.Version(),
		Database:      db,
	})
}

// HandleDatabaseStats returns SQLite file statistics
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	if h.container.DB == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "database stats are only available for sqlite"})
		return
	}

	stats, err := h.container.DB.GetStats(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read database stats")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to read database stats"})
		return
	}

	const mb = 1024 * 1024
	writeJSON(w, http.StatusOK, DatabaseStatsResponse{
		Driver:        h.container.DriverName(),
		SizeMB:        float64(stats.SizeBytes) / mb,
		WALSizeMB:     float64(stats.WALSizeBytes) / mb,
		PageCount:     stats.PageCount,
		FreelistCount: stats.FreelistCount,
	})
}

// getSystemStats calculates CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// 100ms sample keeps the endpoint responsive
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
