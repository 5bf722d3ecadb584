package statusapi

import (
	"context"
	"net/http"
	"time"

	"github.com/os-ghost/core/internal/ghosterr"
)

// handleStatus implements GET /api/v1/status: the orchestrator's
// current mode, autonomy posture, and a health snapshot of every agent
// and provider.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.deps.Orchestrator == nil {
		writeError(w, ghosterr.ErrProviderUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := s.deps.Orchestrator.HealthCheck(ctx)
	resp := map[string]any{
		"mode":   s.deps.Orchestrator.Mode(),
		"health": health,
	}
	if s.deps.Policy != nil {
		settings := s.deps.Policy.Load()
		resp["autonomy_level"] = settings.AutonomyLevel
		resp["read_only"] = settings.ReadOnly
	}
	if s.deps.Queue != nil {
		resp["pending_actions"] = len(s.deps.Queue.GetPending())
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAgents implements GET /api/v1/agents: every agent name known to
// the orchestrator, with its last health result.
func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	if s.deps.Orchestrator == nil {
		writeError(w, ghosterr.ErrProviderUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := s.deps.Orchestrator.HealthCheck(ctx)
	agents := make([]map[string]any, 0, len(health))
	for name, status := range health {
		if name == "provider.primary" || name == "provider.secondary" {
			continue
		}
		agents = append(agents, map[string]any{
			"name":    name,
			"healthy": status.Healthy,
			"error":   status.Error,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"agents": agents})
}

// handleMemory implements GET /api/v1/memory: the key count of every
// tree in the store, or a single tree's full contents when ?tree= is set.
func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	if s.deps.Memory == nil {
		writeError(w, ghosterr.ErrProviderUnavailable)
		return
	}

	if tree := r.URL.Query().Get("tree"); tree != "" {
		kv, err := s.deps.Memory.GetAll(tree)
		if err != nil {
			writeError(w, err)
			return
		}
		entries := make(map[string]string, len(kv))
		for k, v := range kv {
			entries[k] = string(v)
		}
		writeJSON(w, http.StatusOK, map[string]any{"tree": tree, "entries": entries})
		return
	}

	stats, err := s.deps.Memory.TreeStats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trees": stats})
}
