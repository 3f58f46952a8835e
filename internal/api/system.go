package api

import (
	"net/http"

	"github.com/vitrinedev/vitrine-core/internal/health"
)

// handleLiveness answers the orchestrator liveness probe. A response at all
// means the process is alive, so this never inspects dependencies.
func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadiness answers the orchestrator readiness probe. Readiness
// requires the listener to be up and the core database to answer a ping;
// the optional integrations never gate it.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeUnavailable(w, "server is starting")
		return
	}

	snap := s.health.Snapshot(r.Context())
	if snap.Status == health.StatusUnhealthy {
		writeUnavailable(w, "core database is unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleHealth returns the full aggregated health report: overall status
// plus the per-dependency state map. Degraded reports still return 200;
// the body carries the detail.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.health.Snapshot(r.Context())

	status := http.StatusOK
	if snap.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status":     snap.Status,
		"version":    s.version,
		"components": snap.Components,
	})
}
