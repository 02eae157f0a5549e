package api

import (
	"net/http"

	"github.com/endoverdosing/vyla-api/internal/health"
	"github.com/endoverdosing/vyla-api/internal/metrics"
	"github.com/endoverdosing/vyla-api/internal/version"
)

type healthResponse struct {
	Success     bool          `json:"success"`
	Status      string        `json:"status"`
	Timestamp   string        `json:"timestamp"`
	Uptime      health.Uptime `json:"uptime"`
	Memory      health.Memory `json:"memory"`
	Environment string        `json:"environment"`
	Version     string        `json:"version"`
}

type statusResponse struct {
	Success    bool                          `json:"success"`
	Version    version.Info                  `json:"version"`
	Timestamp  string                        `json:"timestamp"`
	Process    health.ProcessStats           `json:"process"`
	Counters   metrics.Snapshot              `json:"counters"`
	Components map[string]health.CheckResult `json:"components,omitempty"`
}

// handleHealth is the public liveness payload. It never calls upstream.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	stats := health.Process(s.health.Uptime())
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, healthResponse{
		Success:     true,
		Status:      "ok",
		Timestamp:   s.shaper.Timestamp(),
		Uptime:      stats.Uptime,
		Memory:      stats.Memory,
		Environment: s.cfg.Environment,
		Version:     version.Version,
	})
}

// handleStatus reports the process counters. ?verbose=true adds the
// registered health checks, which may call upstream.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Success:   true,
		Version:   version.Get(),
		Timestamp: s.shaper.Timestamp(),
		Process:   health.Process(s.health.Uptime()),
		Counters:  s.metrics.Snapshot(),
	}
	if r.URL.Query().Get("verbose") == "true" {
		resp.Components = s.health.Health(r.Context(), true).Checks
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}
