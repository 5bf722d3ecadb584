package eventbus

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/os-ghost/core/internal/logging"
	"github.com/os-ghost/core/internal/policy"
)

// IntentCandidate is a scored suggestion derived from recent events.
type IntentCandidate struct {
	ID          string
	Type        string
	Description string
	Target      string
	Risk        policy.Risk
	Confidence  float64
	SourceEvent uint64
	Arguments   map[string]any
}

// recencyHalfLife controls how fast an event's contribution to a
// candidate's score decays; an event this old contributes half of a
// fresh event's recency boost.
const recencyHalfLife = 2 * time.Minute

// priorityWeight and recencyWeight split the confidence score between
// the event's declared priority and how recently it arrived, per
// spec.md §4.12's "priority boost + recency boost".
const (
	priorityWeight = 0.6
	recencyWeight  = 0.4
	maxPriority    = 10
)

// ScoreEvent computes the priority+recency confidence score (in [0,1])
// for a single event, as of now.
func ScoreEvent(e Event, now time.Time) float64 {
	priorityBoost := clamp01(float64(e.Priority) / maxPriority)

	age := now.Sub(e.Timestamp)
	recencyBoost := 1.0
	if age > 0 {
		halflives := float64(age) / float64(recencyHalfLife)
		recencyBoost = math.Exp2(-halflives)
	}

	return clamp01(priorityWeight*priorityBoost + recencyWeight*recencyBoost)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// IntentRank scores the top-N recent events from a Bus into ranked
// IntentCandidates, one per event whose type maps to a known intent
// rule. It's the SuggestionRank helper from original_source/intent.rs
// / smart_suggestions.rs, adapted to this bus's Event shape.
type IntentRank struct {
	bus   *Bus
	rules map[string]IntentRule
}

// IntentRule maps an event type to the shape of intent it suggests.
type IntentRule struct {
	IntentType  string
	Description string
	Risk        policy.Risk
	TargetField string // key in Event.Data holding the target, if any
}

// NewIntentRank builds a ranker over bus using rules, keyed by event type.
func NewIntentRank(bus *Bus, rules map[string]IntentRule) *IntentRank {
	return &IntentRank{bus: bus, rules: rules}
}

// Candidates scores the most recent topN events against the configured
// rules and returns candidates sorted by descending confidence.
func (r *IntentRank) Candidates(topN int) []IntentCandidate {
	events := r.bus.ListRecent(topN, 0)
	now := time.Now()

	out := make([]IntentCandidate, 0, len(events))
	for _, e := range events {
		rule, ok := r.rules[e.Type]
		if !ok {
			continue
		}
		target, _ := e.Data["target"].(string)
		if rule.TargetField != "" {
			if v, ok := e.Data[rule.TargetField].(string); ok {
				target = v
			}
		}
		out = append(out, IntentCandidate{
			ID:          intentID(e),
			Type:        rule.IntentType,
			Description: rule.Description,
			Target:      target,
			Risk:        rule.Risk,
			Confidence:  ScoreEvent(e, now),
			SourceEvent: e.ID,
			Arguments:   e.Data,
		})
	}

	sortCandidatesDesc(out)
	return out
}

func sortCandidatesDesc(c []IntentCandidate) {
	for i := 1; i < len(c); i++ {
		j := i
		for j > 0 && c[j-1].Confidence < c[j].Confidence {
			c[j-1], c[j] = c[j], c[j-1]
			j--
		}
	}
}

func intentID(e Event) string {
	return e.Type + "#" + strconv.FormatUint(e.ID, 10)
}

// ActionEnqueuer is the subset of internal/queue.Queue the auto-runner
// needs; a structural interface so this package doesn't import queue
// directly (mirrors internal/orchestrator's MCPHandle pattern).
type ActionEnqueuer interface {
	Add(actionType, description, target string, risk policy.Risk, arguments map[string]any) uint64
}

// AutoRunner automates intent creation: when autonomy allows it and a
// candidate clears both a confidence floor and its own per-session
// cooldown, it's turned into a Pending Action.
type AutoRunner struct {
	pol      *policy.Policy
	queue    ActionEnqueuer
	minScore float64
	cooldown time.Duration

	mu       sync.Mutex
	lastRun  map[string]time.Time // keyed by IntentType
}

// NewAutoRunner builds a runner gated by pol's autonomy level, enqueuing
// through queue, requiring minScore confidence and cooldown between
// auto-creations of the same intent type.
func NewAutoRunner(pol *policy.Policy, queue ActionEnqueuer, minScore float64, cooldown time.Duration) *AutoRunner {
	return &AutoRunner{
		pol:      pol,
		queue:    queue,
		minScore: minScore,
		cooldown: cooldown,
		lastRun:  make(map[string]time.Time),
	}
}

// Consider evaluates candidates in order and auto-creates Pending
// Actions for those that pass the autonomy gate, confidence floor, and
// cooldown, returning the ids created.
func (r *AutoRunner) Consider(candidates []IntentCandidate) []uint64 {
	if !r.pol.AllowsActions() {
		return nil
	}
	settings := r.pol.Load()
	if settings.AutonomyLevel != policy.Autonomous {
		return nil
	}

	var created []uint64
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range candidates {
		if c.Confidence < r.minScore {
			continue
		}
		if last, ok := r.lastRun[c.Type]; ok && now.Sub(last) < r.cooldown {
			continue
		}
		id := r.queue.Add(c.Type, c.Description, c.Target, c.Risk, c.Arguments)
		r.lastRun[c.Type] = now
		created = append(created, id)
		logging.EventBus("auto-created intent %s as action %d (confidence=%.2f)", c.ID, id, c.Confidence)
	}
	return created
}
