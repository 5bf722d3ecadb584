package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/os-ghost/core/internal/policy"
)

func TestScoreEvent_FreshHighPriorityScoresHigh(t *testing.T) {
	e := Event{Priority: 10, Timestamp: time.Now()}
	score := ScoreEvent(e, time.Now())
	assert.InDelta(t, 1.0, score, 0.05)
}

func TestScoreEvent_OldEventDecaysTowardPriorityOnly(t *testing.T) {
	now := time.Now()
	fresh := Event{Priority: 10, Timestamp: now}
	stale := Event{Priority: 10, Timestamp: now.Add(-10 * recencyHalfLife)}

	assert.Greater(t, ScoreEvent(fresh, now), ScoreEvent(stale, now))
}

func TestScoreEvent_ZeroPriorityAndOldIsLow(t *testing.T) {
	e := Event{Priority: 0, Timestamp: time.Now().Add(-time.Hour)}
	assert.Less(t, ScoreEvent(e, time.Now()), 0.1)
}

func rules() map[string]IntentRule {
	return map[string]IntentRule{
		"repeated_form_fill": {
			IntentType:  "suggest_autofill",
			Description: "suggest saving this form",
			Risk:        policy.RiskLow,
			TargetField: "target",
		},
	}
}

func TestIntentRank_CandidatesScoredAndSortedDescending(t *testing.T) {
	b := New(time.Second)
	b.Publish("repeated_form_fill", "monitor", map[string]any{"target": "example.com"}, 10, "")
	time.Sleep(5 * time.Millisecond)
	b.Publish("repeated_form_fill", "monitor", map[string]any{"target": "other.com"}, 2, "")

	rank := NewIntentRank(b, rules())
	cands := rank.Candidates(10)

	require.Len(t, cands, 2)
	assert.GreaterOrEqual(t, cands[0].Confidence, cands[1].Confidence)
	assert.Equal(t, "suggest_autofill", cands[0].Type)
}

func TestIntentRank_IgnoresEventsWithoutRule(t *testing.T) {
	b := New(time.Second)
	b.Publish("unrelated_event", "monitor", nil, 5, "")

	rank := NewIntentRank(b, rules())
	assert.Empty(t, rank.Candidates(10))
}

type fakeEnqueuer struct {
	calls []string
}

func (f *fakeEnqueuer) Add(actionType, description, target string, risk policy.Risk, arguments map[string]any) uint64 {
	f.calls = append(f.calls, actionType)
	return uint64(len(f.calls))
}

func autonomousPolicy(t *testing.T) *policy.Policy {
	t.Helper()
	p, err := policy.Open(t.TempDir() + "/privacy_settings.json")
	require.NoError(t, err)
	settings := p.Load()
	settings.AutonomyLevel = policy.Autonomous
	require.NoError(t, p.Save(settings))
	return p
}

func TestAutoRunner_CreatesActionsAboveConfidenceFloor(t *testing.T) {
	pol := autonomousPolicy(t)
	enq := &fakeEnqueuer{}
	runner := NewAutoRunner(pol, enq, 0.5, time.Minute)

	candidates := []IntentCandidate{
		{Type: "suggest_autofill", Confidence: 0.9},
		{Type: "suggest_close_tab", Confidence: 0.1},
	}
	created := runner.Consider(candidates)

	require.Len(t, created, 1)
	assert.Equal(t, []string{"suggest_autofill"}, enq.calls)
}

func TestAutoRunner_RespectsPerTypeCooldown(t *testing.T) {
	pol := autonomousPolicy(t)
	enq := &fakeEnqueuer{}
	runner := NewAutoRunner(pol, enq, 0.0, time.Hour)

	candidates := []IntentCandidate{{Type: "suggest_autofill", Confidence: 0.9}}
	first := runner.Consider(candidates)
	second := runner.Consider(candidates)

	assert.Len(t, first, 1)
	assert.Empty(t, second)
}

func TestAutoRunner_BlockedByNonAutonomousLevel(t *testing.T) {
	p, err := policy.Open(t.TempDir() + "/privacy_settings.json")
	require.NoError(t, err)
	enq := &fakeEnqueuer{}
	runner := NewAutoRunner(p, enq, 0.0, time.Minute)

	created := runner.Consider([]IntentCandidate{{Type: "suggest_autofill", Confidence: 0.9}})
	assert.Empty(t, created)
	assert.Empty(t, enq.calls)
}
