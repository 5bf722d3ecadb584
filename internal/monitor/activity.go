package monitor

import (
	"sync"
	"time"
)

// ActivityState classifies how actively the user is using the machine,
// derived from recent input counts and the time since the last event.
type ActivityState string

const (
	ActivityActive   ActivityState = "active"
	ActivityModerate ActivityState = "moderate"
	ActivityLow      ActivityState = "low"
	ActivityIdle     ActivityState = "idle"
)

// mouseThrottle bounds mouse-movement bookkeeping to one update per
// 100ms, per spec.md §4.10, so a fast mouse sweep doesn't dominate the
// activity counters.
const mouseThrottle = 100 * time.Millisecond

// ActivityTracker accumulates key/mouse activity counters an input
// listener feeds it, and derives an ActivityState on demand. Waiters can
// block on a state transition via Wait.
type ActivityTracker struct {
	mu              sync.Mutex
	lastActivity    time.Time
	lastMouseUpdate time.Time
	lastBurst       time.Time
	keyCount        int64
	mouseCount      int64

	cond        *sync.Cond
	lastState   ActivityState
}

// NewActivityTracker returns a tracker seeded as idle since boot.
func NewActivityTracker() *ActivityTracker {
	t := &ActivityTracker{lastState: ActivityIdle}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// RecordKey registers a keystroke, updating the last-activity and
// last-burst timestamps.
func (t *ActivityTracker) RecordKey() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.keyCount++
	t.lastActivity = now
	t.lastBurst = now
	t.cond.Broadcast()
}

// RecordMouse registers mouse movement, throttled to once per 100ms.
func (t *ActivityTracker) RecordMouse() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if !t.lastMouseUpdate.IsZero() && now.Sub(t.lastMouseUpdate) < mouseThrottle {
		return
	}
	t.lastMouseUpdate = now
	t.mouseCount++
	t.lastActivity = now
	t.cond.Broadcast()
}

// CalculateState derives the current ActivityState: idle if there has
// been no activity yet or none for idleThreshold, low if none for
// lowActivityThreshold, active if the key+mouse count accumulated so far
// reaches highActivityCount, moderate otherwise.
// Crossing into a new state broadcasts to any Wait callers.
func (t *ActivityTracker) CalculateState(idleThreshold, lowActivityThreshold time.Duration, highActivityCount int64) ActivityState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.calculateLocked(idleThreshold, lowActivityThreshold, highActivityCount)
	if state != t.lastState {
		t.lastState = state
		t.cond.Broadcast()
	}
	return state
}

func (t *ActivityTracker) calculateLocked(idleThreshold, lowActivityThreshold time.Duration, highActivityCount int64) ActivityState {
	if t.lastActivity.IsZero() {
		return ActivityIdle
	}

	sinceActivity := time.Since(t.lastActivity)
	if sinceActivity >= idleThreshold {
		return ActivityIdle
	}
	if sinceActivity >= lowActivityThreshold {
		return ActivityLow
	}
	if t.keyCount+t.mouseCount >= highActivityCount {
		return ActivityActive
	}
	return ActivityModerate
}

// Wait blocks until the activity state changes, or ctx-style cancellation
// is handled by the caller (Wait itself has no timeout; callers loop
// with CalculateState on a ticker for the bounded case).
func (t *ActivityTracker) Wait() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cond.Wait()
}

// Counts returns the raw key/mouse counters, for diagnostics.
func (t *ActivityTracker) Counts() (keys, mouse int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.keyCount, t.mouseCount
}
