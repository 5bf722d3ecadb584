package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActivityTracker_IdleWithNoEvents(t *testing.T) {
	tr := NewActivityTracker()
	state := tr.CalculateState(100*time.Millisecond, 50*time.Millisecond, 10)
	assert.Equal(t, ActivityIdle, state)
}

func TestActivityTracker_ActiveAfterBurst(t *testing.T) {
	tr := NewActivityTracker()
	for i := 0; i < 15; i++ {
		tr.RecordKey()
	}
	state := tr.CalculateState(time.Minute, 30*time.Second, 10)
	assert.Equal(t, ActivityActive, state)
}

func TestActivityTracker_ModerateBelowHighCount(t *testing.T) {
	tr := NewActivityTracker()
	tr.RecordKey()
	state := tr.CalculateState(time.Minute, 30*time.Second, 10)
	assert.Equal(t, ActivityModerate, state)
}

func TestActivityTracker_LowAfterQuietPeriod(t *testing.T) {
	tr := NewActivityTracker()
	tr.RecordKey()
	time.Sleep(30 * time.Millisecond)
	state := tr.CalculateState(time.Minute, 20*time.Millisecond, 10)
	assert.Equal(t, ActivityLow, state)
}

func TestActivityTracker_MouseThrottled(t *testing.T) {
	tr := NewActivityTracker()
	for i := 0; i < 5; i++ {
		tr.RecordMouse()
	}
	_, mouse := tr.Counts()
	assert.Equal(t, int64(1), mouse)
}

func TestActivityTracker_Wait_UnblocksOnTransition(t *testing.T) {
	tr := NewActivityTracker()
	done := make(chan struct{})
	go func() {
		tr.Wait()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	tr.RecordKey()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not unblock after RecordKey broadcast")
	}
}
