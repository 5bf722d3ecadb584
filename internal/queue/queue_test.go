package queue

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/os-ghost/core/internal/ghosterr"
	"github.com/os-ghost/core/internal/policy"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "action_ledger.json")
	l := NewLedger(path, 2, 20*time.Millisecond)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestAdd_ReturnsMonotonicIDs(t *testing.T) {
	q := New(newTestLedger(t))

	id1 := q.Add("click", "click button", "button#submit", policy.RiskLow, nil)
	id2 := q.Add("navigate", "go to url", "https://example.com", policy.RiskMedium, nil)

	assert.Equal(t, uint64(1), id1)
	assert.Equal(t, uint64(2), id2)
}

func TestApproveThenExecute(t *testing.T) {
	q := New(newTestLedger(t))
	id := q.Add("click", "click button", "", policy.RiskLow, nil)

	require.NoError(t, q.Approve(id))
	a, ok := q.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusApproved, a.Status)

	require.NoError(t, q.MarkExecuted(id, map[string]any{"result": "ok"}))
	a, _ = q.Get(id)
	assert.Equal(t, StatusExecuted, a.Status)
	assert.Equal(t, "ok", a.Outputs["result"])
}

func TestDeny(t *testing.T) {
	q := New(newTestLedger(t))
	id := q.Add("click", "click button", "", policy.RiskLow, nil)

	require.NoError(t, q.Deny(id))
	a, _ := q.Get(id)
	assert.Equal(t, StatusDenied, a.Status)
}

func TestInvalidTransition_DenyAfterExecuted(t *testing.T) {
	q := New(newTestLedger(t))
	id := q.Add("click", "click button", "", policy.RiskLow, nil)
	require.NoError(t, q.Approve(id))
	require.NoError(t, q.MarkExecuted(id, nil))

	err := q.Deny(id)
	assert.ErrorIs(t, err, ghosterr.ErrInvalidTransition)
}

func TestInvalidTransition_ExecuteWithoutApproval(t *testing.T) {
	q := New(newTestLedger(t))
	id := q.Add("click", "click button", "", policy.RiskLow, nil)

	err := q.MarkExecuted(id, nil)
	assert.ErrorIs(t, err, ghosterr.ErrInvalidTransition)
}

func TestMarkFailed(t *testing.T) {
	q := New(newTestLedger(t))
	id := q.Add("click", "click button", "", policy.RiskLow, nil)
	require.NoError(t, q.Approve(id))

	require.NoError(t, q.MarkFailed(id, "element not found"))
	a, _ := q.Get(id)
	assert.Equal(t, StatusFailed, a.Status)
	assert.Equal(t, "element not found", a.Error)
}

func TestGetPending_OnlyReturnsPending(t *testing.T) {
	q := New(newTestLedger(t))
	id1 := q.Add("click", "a", "", policy.RiskLow, nil)
	id2 := q.Add("click", "b", "", policy.RiskLow, nil)
	require.NoError(t, q.Approve(id2))

	pending := q.GetPending()
	require.Len(t, pending, 1)
	assert.Equal(t, id1, pending[0].ID)
}

func TestExpireStale(t *testing.T) {
	q := New(newTestLedger(t))
	id := q.Add("click", "a", "", policy.RiskLow, nil)

	q.mu.Lock()
	q.byID[id].ExpiresAt = time.Now().Add(-time.Second)
	q.mu.Unlock()

	expired := q.ExpireStale()
	assert.Equal(t, []uint64{id}, expired)

	a, _ := q.Get(id)
	assert.Equal(t, StatusExpired, a.Status)
}

func TestGet_UnknownID(t *testing.T) {
	q := New(newTestLedger(t))
	_, ok := q.Get(999)
	assert.False(t, ok)
}

func TestClone_IsIndependent(t *testing.T) {
	q := New(newTestLedger(t))
	id := q.Add("click", "a", "", policy.RiskLow, map[string]any{"x": 1})

	a, _ := q.Get(id)
	a.Arguments["x"] = 2

	original, _ := q.Get(id)
	assert.Equal(t, 1, original.Arguments["x"])
}
