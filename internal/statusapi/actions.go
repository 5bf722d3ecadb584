package statusapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/os-ghost/core/internal/ghosterr"
)

// handlePendingActions implements GET /api/v1/pending-actions.
func (s *Server) handlePendingActions(w http.ResponseWriter, r *http.Request) {
	if s.deps.Queue == nil {
		writeError(w, ghosterr.ErrProviderUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"actions": s.deps.Queue.GetPending()})
}

// handleApprove implements POST /api/v1/actions/{id}/approve.
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.transitionAction(w, r, s.deps.Queue.Approve)
}

// handleDeny implements POST /api/v1/actions/{id}/deny, also discarding
// any in-flight preview for the denied action.
func (s *Server) handleDeny(w http.ResponseWriter, r *http.Request) {
	s.transitionAction(w, r, func(id uint64) error {
		err := s.deps.Queue.Deny(id)
		if err == nil && s.deps.Preview != nil {
			s.deps.Preview.Discard(id)
		}
		return err
	})
}

func (s *Server) transitionAction(w http.ResponseWriter, r *http.Request, transition func(uint64) error) {
	if s.deps.Queue == nil {
		writeError(w, ghosterr.ErrProviderUnavailable)
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid action id %q", ghosterr.ErrInvalidParams, idStr))
		return
	}

	if err := transition(id); err != nil {
		writeError(w, err)
		return
	}

	action, _ := s.deps.Queue.Get(id)
	writeJSON(w, http.StatusOK, map[string]any{"action": action})
}
