package workflow

import (
	"context"

	"github.com/os-ghost/core/internal/agent"
)

// Sequential runs steps left to right; each step receives the
// accumulated previous outputs.
type Sequential struct {
	Steps []Step
}

func (s Sequential) Run(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
	current := agentCtx
	var last agent.Output

	for _, step := range s.Steps {
		out, err := step.Run(ctx, current)
		if err != nil {
			return agent.Output{}, err
		}
		last = out
		current = current.WithPreviousOutput(out.Result)
		if out.Next == agent.NextStop || out.Next == agent.NextPuzzleSolved {
			break
		}
	}
	return last, nil
}
