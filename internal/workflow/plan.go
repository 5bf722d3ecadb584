package workflow

import (
	"context"
	"strings"

	"github.com/os-ghost/core/internal/agent"
	"github.com/os-ghost/core/internal/logging"
	"github.com/os-ghost/core/internal/rollback"
)

// PlanStep is one step of a Plan. Its Executor returns a rollback pair
// when the step performed a reversible side effect; a step whose
// ActionType is prefixed "verify." is not run through an Executor —
// instead Verify checks the last non-verify step's output.
type PlanStep struct {
	ActionType string
	Executor   func(ctx context.Context, agentCtx agent.Context) (StepResult, error)
	Verify     func(ctx context.Context, lastOutput agent.Output) error
}

func (s PlanStep) isVerify() bool {
	return strings.HasPrefix(s.ActionType, "verify.")
}

// StepResult is what an Executor returns: the produced output plus an
// optional rollback pairing.
type StepResult struct {
	Output             agent.Output
	RollbackActionType string
	ActionID           uint64
}

// Plan is an ordered sequence of PlanStep.
type Plan struct {
	Steps    []PlanStep
	Rollback *rollback.Manager
}

// ExecutionResult is Plan.Run's outcome.
type ExecutionResult struct {
	Success       bool
	ExecutedSteps int
	Error         string
	Output        *agent.Output
}

// Run executes the plan in order. A verify step checks the last
// non-verify step's output; a verify failure terminates the plan and
// triggers a LIFO rollback of the actions recorded so far.
func (p Plan) Run(ctx context.Context, agentCtx agent.Context) ExecutionResult {
	var lastOutput agent.Output
	haveLastOutput := false
	executed := 0

	for _, step := range p.Steps {
		if step.isVerify() {
			if !haveLastOutput {
				continue
			}
			if step.Verify == nil {
				continue
			}
			if err := step.Verify(ctx, lastOutput); err != nil {
				logging.Get(logging.CategoryWorkflow).Warn("verify step %s failed: %v", step.ActionType, err)
				p.rollbackAll()
				return ExecutionResult{Success: false, ExecutedSteps: executed, Error: err.Error()}
			}
			continue
		}

		result, err := step.Executor(ctx, agentCtx)
		if err != nil {
			logging.Get(logging.CategoryWorkflow).Warn("step %s failed: %v", step.ActionType, err)
			p.rollbackAll()
			return ExecutionResult{Success: false, ExecutedSteps: executed, Error: err.Error()}
		}

		executed++
		lastOutput = result.Output
		haveLastOutput = true
		agentCtx = agentCtx.WithPreviousOutput(result.Output.Result)
	}

	return ExecutionResult{Success: true, ExecutedSteps: executed, Output: &lastOutput}
}

func (p Plan) rollbackAll() {
	if p.Rollback == nil {
		return
	}
	for {
		r := p.Rollback.Undo()
		if !r.Success {
			return
		}
	}
}
