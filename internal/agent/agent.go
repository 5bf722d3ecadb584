// Package agent defines the Agent Runtime (C6): the Agent contract and
// the immutable AgentContext/AgentOutput value types that flow through
// it. Agents are stateless with respect to request flow; all mutable
// state lives in their injected collaborators (provider.Router, the
// store, the policy).
package agent

import (
	"context"
	"fmt"
)

// NextAction tells the caller what should happen after this output.
type NextAction string

const (
	NextContinue     NextAction = "continue"
	NextRetry        NextAction = "retry"
	NextStop         NextAction = "stop"
	NextPuzzleSolved NextAction = "puzzle_solved"
)

// NextShowHint requests hint level i be shown; it is a constructor
// rather than a constant since it carries a parameter.
func NextShowHint(i int) NextAction {
	return NextAction(fmt.Sprintf("show_hint:%d", i))
}

// PlanningContext carries the active plan/workflow state an agent may
// consult without owning it.
type PlanningContext struct {
	PlanID      string
	StepIndex   int
	TotalSteps  int
	PlanSummary string
}

// Context is AgentContext: an immutable per-invocation bundle. Clones
// are cheap; mutation is by producing a new value via With* helpers.
type Context struct {
	CurrentURL       string
	CurrentTitle     string
	PageContent      string
	TaskDescription  string
	Proximity        float64 // 0..1
	PreviousOutputs  []string
	Metadata         map[string]any
	Planning         PlanningContext
}

// WithPreviousOutput returns a copy of ctx with text appended to
// PreviousOutputs, leaving ctx itself untouched.
func (c Context) WithPreviousOutput(text string) Context {
	clone := c
	clone.PreviousOutputs = append(append([]string{}, c.PreviousOutputs...), text)
	return clone
}

// WithMetadata returns a copy of ctx with key=value merged into Metadata.
func (c Context) WithMetadata(key string, value any) Context {
	clone := c
	clone.Metadata = make(map[string]any, len(c.Metadata)+1)
	for k, v := range c.Metadata {
		clone.Metadata[k] = v
	}
	clone.Metadata[key] = value
	return clone
}

// Output is AgentOutput: the result of a single Agent.Process call.
type Output struct {
	AgentName  string
	Result     string
	Confidence float64 // 0..1
	Data       map[string]any
	Next       NextAction
}

// FailSafe returns a safety-critical fail-safe output: confidence 0,
// Stop, and data flagging approved=false. Used by guardrail/critic
// agents when a structured response fails to parse.
func FailSafe(agentName, reason string) Output {
	return Output{
		AgentName:  agentName,
		Result:     reason,
		Confidence: 0,
		Data:       map[string]any{"approved": false, "safety": 0},
		Next:       NextStop,
	}
}

// Agent is the C6 agent contract. Initialize/Shutdown/HealthCheck are
// optional in spirit (a no-op implementation satisfies the interface);
// Process is the only shape-defining method.
type Agent interface {
	Name() string
	Description() string
	CanHandle(ctx Context) bool
	Process(ctx context.Context, agentCtx Context) (Output, error)
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}

// Base provides no-op Initialize/Shutdown/HealthCheck so concrete
// agents only need to implement Name/Description/CanHandle/Process.
type Base struct {
	AgentName        string
	AgentDescription string
}

func (b Base) Name() string        { return b.AgentName }
func (b Base) Description() string { return b.AgentDescription }
func (b Base) Initialize(ctx context.Context) error { return nil }
func (b Base) Shutdown(ctx context.Context) error   { return nil }
func (b Base) HealthCheck(ctx context.Context) error { return nil }
