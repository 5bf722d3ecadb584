package statusapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/os-ghost/core/internal/agent"
	"github.com/os-ghost/core/internal/ghosterr"
	"github.com/os-ghost/core/internal/workflow"
)

// handleListWorkflows returns every saved workflow's id and step count.
func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	s.workflows.mu.Lock()
	out := make([]map[string]any, 0, len(s.workflows.saved))
	for id, sw := range s.workflows.saved {
		out = append(out, map[string]any{
			"id":          id,
			"step_count":  len(sw.wf.Steps),
			"recorded_at": sw.wf.RecordedAt,
		})
	}
	s.workflows.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"workflows": out})
}

// registerWorkflowRequest is the body handleRegisterWorkflow accepts: an
// already-recorded Workflow, e.g. exported from another process.
type registerWorkflowRequest struct {
	Workflow workflow.Workflow `json:"workflow"`
}

// handleRegisterWorkflow imports a Workflow entity without a live
// registry backing it: it is saved with an empty registry, so executing
// it fails fast with ErrNotFound once it has any step. Importing under
// the id of a recorded workflow replaces that recording.
func (s *Server) handleRegisterWorkflow(w http.ResponseWriter, r *http.Request) {
	var req registerWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: decode workflow: %v", ghosterr.ErrInvalidParams, err))
		return
	}
	if req.Workflow.ID == "" {
		writeError(w, fmt.Errorf("%w: workflow id is required", ghosterr.ErrInvalidParams))
		return
	}

	s.workflows.mu.Lock()
	s.workflows.saved[req.Workflow.ID] = savedWorkflow{
		wf:       req.Workflow,
		registry: workflow.NewMapRegistry(),
	}
	s.workflows.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"id": req.Workflow.ID})
}

// handleExecuteWorkflow replays a saved workflow by re-resolving its
// recorded step names against the registry it was saved with.
func (s *Server) handleExecuteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.workflows.mu.Lock()
	sw, ok := s.workflows.saved[id]
	s.workflows.mu.Unlock()
	if !ok {
		writeError(w, fmt.Errorf("%w: workflow %s", ghosterr.ErrNotFound, id))
		return
	}

	out, err := workflow.Replay(r.Context(), sw.wf, sw.registry, agent.Context{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": out.Result, "next": out.Next})
}

// handleRecordStart begins a new recording session. Only one may be
// active at a time; starting a second returns 409.
func (s *Server) handleRecordStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.ID == "" {
		req.ID = fmt.Sprintf("recording-%d", time.Now().UnixNano())
	}

	s.workflows.mu.Lock()
	defer s.workflows.mu.Unlock()
	if s.workflows.active != nil {
		writeError(w, fmt.Errorf("%w: recording %s already in progress", ghosterr.ErrInvalidTransition, s.workflows.active.id))
		return
	}
	s.workflows.active = &recordingSession{id: req.ID, registry: workflow.NewMapRegistry()}

	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "status": "recording"})
}

// handleRecordStop finalizes the active recording session into a saved
// Workflow, replayable by id thereafter.
func (s *Server) handleRecordStop(w http.ResponseWriter, r *http.Request) {
	s.workflows.mu.Lock()
	defer s.workflows.mu.Unlock()

	session := s.workflows.active
	if session == nil {
		writeError(w, fmt.Errorf("%w: no recording in progress", ghosterr.ErrInvalidTransition))
		return
	}
	s.workflows.active = nil

	wf := workflow.Workflow{ID: session.id, Steps: session.steps, RecordedAt: time.Now()}
	s.workflows.saved[session.id] = savedWorkflow{wf: wf, registry: session.registry}

	writeJSON(w, http.StatusOK, map[string]any{"id": session.id, "step_count": len(session.steps)})
}
