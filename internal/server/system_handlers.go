package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/qsim/internal/database"
	"github.com/aristath/qsim/internal/modules/simulation"
)

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	resultsDB   *database.DB
	service     *simulation.Service
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, dataDir string, resultsDB *database.DB, service *simulation.Service) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		dataDir:     dataDir,
		startupTime: time.Now(),
		resultsDB:   resultsDB,
		service:     service,
	}
}

// SystemStatusResponse represents the system status response
type SystemStatusResponse struct {
	Status       string  `json:"status"` // "healthy" or "unhealthy"
	UptimeHours  float64 `json:"uptime_hours"`
	LiveSessions int     `json:"live_sessions"`
	CPUPercent   float64 `json:"cpu_percent"`
	RAMPercent   float64 `json:"ram_percent"`
}

// DatabaseStatsResponse represents database statistics
type DatabaseStatsResponse struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	SizeMB      float64 `json:"size_mb"`
	WALSizeMB   float64 `json:"wal_size_mb"`
	LastChecked string  `json:"last_checked"`
}

// HandleHealth handles GET /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if h.resultsDB != nil {
		if err := h.resultsDB.QuickCheck(ctx); err != nil {
			h.log.Error().Err(err).Msg("Database health check failed")
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// HandleSystemStatus returns process and host status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, ramPercent := h.getSystemStats()
	response := SystemStatusResponse{
		Status:       "healthy",
		UptimeHours:  time.Since(h.startupTime).Hours(),
		LiveSessions: len(h.service.List()),
		CPUPercent:   cpuPercent,
		RAMPercent:   ramPercent,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleDatabaseStats returns results database statistics
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")

	response := DatabaseStatsResponse{
		Name:        h.resultsDB.Name(),
		Path:        h.resultsDB.Path(),
		LastChecked: time.Now().Format(time.RFC3339),
	}

	if info, err := os.Stat(h.resultsDB.Path()); err == nil {
		response.SizeMB = float64(info.Size()) / 1024 / 1024
	}
	walPath := filepath.Clean(h.resultsDB.Path() + "-wal")
	if info, err := os.Stat(walPath); err == nil {
		response.WALSizeMB = float64(info.Size()) / 1024 / 1024
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// getSystemStats calculates CPU and RAM usage percentages. The 100ms CPU
// sampling window keeps the endpoint responsive under frequent polling.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
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
