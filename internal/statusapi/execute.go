package statusapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/os-ghost/core/internal/agent"
	"github.com/os-ghost/core/internal/ghosterr"
)

// executeRequest is POST /api/v1/execute's body: a single user task
// description, handed to the orchestrator as agent.Context.TaskDescription.
type executeRequest struct {
	Task      string  `json:"task"`
	Proximity float64 `json:"proximity,omitempty"`
}

// handleExecute implements POST /api/v1/execute: runs one turn of the
// orchestrator's pipeline. While a recording session is active, the
// turn is also captured as a named step so it can be replayed later
// via POST /api/v1/workflows/{id}/execute.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if s.deps.Orchestrator == nil {
		writeError(w, ghosterr.ErrProviderUnavailable)
		return
	}

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: decode execute request: %v", ghosterr.ErrInvalidParams, err))
		return
	}
	if req.Task == "" {
		writeError(w, fmt.Errorf("%w: task is required", ghosterr.ErrInvalidParams))
		return
	}

	agentCtx := agent.Context{TaskDescription: req.Task, Proximity: req.Proximity}
	result, err := s.deps.Orchestrator.Process(r.Context(), agentCtx, s.deps.MCP)
	if err != nil {
		writeError(w, err)
		return
	}

	s.recordTurnIfActive(req.Task, result)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     result.Message,
		"ghost_state": result.GhostState,
		"proximity":   result.Proximity,
		"solved":      result.Solved,
	})
}
