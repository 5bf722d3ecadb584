package workflow

import (
	"context"

	"github.com/os-ghost/core/internal/agent"
	"github.com/os-ghost/core/internal/logging"
)

// Reflection runs a generator agent then a critic agent; if the critic
// approves, the generator's output is returned. Otherwise the generator
// re-runs with the critic's suggestions attached to the context, up to
// MaxAttempts. The final output carries ReflectionApproved.
type Reflection struct {
	Generator  Step
	Critic     Step
	MaxAttempts int
}

func (r Reflection) Run(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	current := agentCtx
	var generated agent.Output

	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := r.Generator.Run(ctx, current)
		if err != nil {
			return agent.Output{}, err
		}
		generated = out

		critique, err := r.Critic.Run(ctx, current.WithPreviousOutput(out.Result))
		if err != nil {
			return agent.Output{}, err
		}

		approved, _ := critique.Data["approved"].(bool)
		if approved {
			return withReflectionApproved(generated, true), nil
		}

		logging.WorkflowDebug("reflection attempt %d not approved, retrying with critic suggestions", attempt+1)
		current = current.WithMetadata("critic_suggestions", critique.Result)
	}

	return withReflectionApproved(generated, false), nil
}

func withReflectionApproved(out agent.Output, approved bool) agent.Output {
	if out.Data == nil {
		out.Data = make(map[string]any, 1)
	}
	out.Data["reflection_approved"] = approved
	return out
}
