package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/os-ghost/core/internal/ghosterr"
	"github.com/os-ghost/core/internal/logging"
	"github.com/os-ghost/core/internal/policy"
)

// defaultTTL is how long a Pending action lives before expire_stale
// moves it to Expired, absent an explicit caller-supplied expiry.
const defaultTTL = 5 * time.Minute

// Queue is the C4 pending-action queue: a monotonic-id, mutex-guarded
// state machine over Action, paired with a Ledger that records every
// transition.
type Queue struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*Action
	ledger *Ledger
}

// New constructs a Queue that records every transition through ledger.
func New(ledger *Ledger) *Queue {
	return &Queue{
		byID:   make(map[uint64]*Action),
		ledger: ledger,
	}
}

// Add enqueues a new Pending action and returns its monotonically
// increasing id.
func (q *Queue) Add(actionType, description, target string, risk policy.Risk, arguments map[string]any) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	id := q.nextID
	now := time.Now()
	action := &Action{
		ID:          id,
		Type:        actionType,
		Description: description,
		Target:      target,
		Risk:        risk,
		Status:      StatusPending,
		Arguments:   arguments,
		CreatedAt:   now,
		ExpiresAt:   now.Add(defaultTTL),
	}
	q.byID[id] = action

	logging.Queue("action %d enqueued: type=%s risk=%s", id, actionType, risk)
	q.ledger.RecordCreated(action.Clone())
	return id
}

// Get returns a copy of the action with the given id.
func (q *Queue) Get(id uint64) (Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	a, ok := q.byID[id]
	if !ok {
		return Action{}, false
	}
	return a.Clone(), true
}

// GetPending returns copies of every action currently Pending.
func (q *Queue) GetPending() []Action {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []Action
	for _, a := range q.byID {
		if a.Status == StatusPending {
			out = append(out, a.Clone())
		}
	}
	return out
}

// Approve transitions id from Pending to Approved.
func (q *Queue) Approve(id uint64) error {
	return q.transition(id, StatusApproved, "")
}

// Deny transitions id from Pending to Denied.
func (q *Queue) Deny(id uint64) error {
	return q.transition(id, StatusDenied, "")
}

// MarkExecuted transitions id from Approved to Executed, recording outputs.
func (q *Queue) MarkExecuted(id uint64, outputs map[string]any) error {
	q.mu.Lock()
	a, ok := q.byID[id]
	if !ok {
		q.mu.Unlock()
		return fmt.Errorf("%w: action %d", ghosterr.ErrNotFound, id)
	}
	if !canTransition(a.Status, StatusExecuted) {
		q.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ghosterr.ErrInvalidTransition, a.Status, StatusExecuted)
	}
	a.Status = StatusExecuted
	a.Outputs = outputs
	snapshot := a.Clone()
	q.mu.Unlock()

	logging.Queue("action %d executed", id)
	q.ledger.UpdateStatus(snapshot)
	return nil
}

// MarkFailed transitions id from Approved to Failed, recording the error.
func (q *Queue) MarkFailed(id uint64, execErr string) error {
	q.mu.Lock()
	a, ok := q.byID[id]
	if !ok {
		q.mu.Unlock()
		return fmt.Errorf("%w: action %d", ghosterr.ErrNotFound, id)
	}
	if !canTransition(a.Status, StatusFailed) {
		q.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ghosterr.ErrInvalidTransition, a.Status, StatusFailed)
	}
	a.Status = StatusFailed
	a.Error = execErr
	snapshot := a.Clone()
	q.mu.Unlock()

	logging.Get(logging.CategoryQueue).Warn("action %d failed: %s", id, execErr)
	q.ledger.UpdateStatus(snapshot)
	return nil
}

// ExpireStale moves every Pending action whose expiry has passed to
// Expired, returning the ids affected.
func (q *Queue) ExpireStale() []uint64 {
	q.mu.Lock()
	now := time.Now()
	var expired []uint64
	var snapshots []Action
	for _, a := range q.byID {
		if a.Status == StatusPending && now.After(a.ExpiresAt) {
			a.Status = StatusExpired
			expired = append(expired, a.ID)
			snapshots = append(snapshots, a.Clone())
		}
	}
	q.mu.Unlock()

	for _, s := range snapshots {
		logging.Queue("action %d expired", s.ID)
		q.ledger.UpdateStatus(s)
	}
	return expired
}

// transition applies a Pending-origin status change under the queue lock.
func (q *Queue) transition(id uint64, to Status, reason string) error {
	q.mu.Lock()
	a, ok := q.byID[id]
	if !ok {
		q.mu.Unlock()
		return fmt.Errorf("%w: action %d", ghosterr.ErrNotFound, id)
	}
	if !canTransition(a.Status, to) {
		q.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ghosterr.ErrInvalidTransition, a.Status, to)
	}
	a.Status = to
	a.Reason = reason
	snapshot := a.Clone()
	q.mu.Unlock()

	logging.Queue("action %d transitioned to %s", id, to)
	q.ledger.UpdateStatus(snapshot)
	return nil
}
