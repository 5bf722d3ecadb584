// Package rollback implements Action Preview & Rollback (C5): transient
// preview artifacts shown before an action executes, and an undo stack
// that can reverse a reversible action's effect.
//
// Neither the teacher nor any other retrieved example repo has a preview
// or undo concept; this package is built directly from the
// specification in the teacher's ambient idiom (categorized logging,
// mutex-guarded state, never-panics contracts).
package rollback

import (
	"sync"

	"github.com/os-ghost/core/internal/logging"
	"github.com/os-ghost/core/internal/policy"
)

// Preview is a transient UI artifact describing a pending action before
// it executes.
type Preview struct {
	ID          uint64
	ActionID    uint64
	Description string
	Risk        policy.Risk
	Visual      []byte
	Progress    float64 // 0..1
}

// PreviewManager creates and discards Preview artifacts, keyed by
// action id. Previews are discarded once the action reaches a terminal
// state.
type PreviewManager struct {
	mu       sync.Mutex
	nextID   uint64
	byAction map[uint64]*Preview
}

// NewPreviewManager constructs an empty PreviewManager.
func NewPreviewManager() *PreviewManager {
	return &PreviewManager{byAction: make(map[uint64]*Preview)}
}

// StartPreview creates a preview artifact for actionID and returns its
// preview id.
func (m *PreviewManager) StartPreview(actionID uint64, description string, risk policy.Risk) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.byAction[actionID] = &Preview{
		ID:          id,
		ActionID:    actionID,
		Description: description,
		Risk:        risk,
	}
	logging.Rollback("preview %d started for action %d", id, actionID)
	return id
}

// SetVisualPreview attaches a visual payload (e.g. a screenshot) to the
// preview for actionID.
func (m *PreviewManager) SetVisualPreview(actionID uint64, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.byAction[actionID]; ok {
		p.Visual = payload
	}
}

// UpdateProgress sets the preview's completion fraction, clamped to [0,1].
func (m *PreviewManager) UpdateProgress(actionID uint64, progress float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	if p, ok := m.byAction[actionID]; ok {
		p.Progress = progress
	}
}

// Get returns a copy of the preview for actionID, if one exists.
func (m *PreviewManager) Get(actionID uint64) (Preview, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.byAction[actionID]
	if !ok {
		return Preview{}, false
	}
	return *p, true
}

// Discard removes the preview for actionID, called when the action
// reaches a terminal state.
func (m *PreviewManager) Discard(actionID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.byAction, actionID)
	logging.RollbackDebug("preview discarded for action %d", actionID)
}
