package workflow

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/os-ghost/core/internal/agent"
)

// Parallel runs steps concurrently on the same context and collects all
// outputs; there is no mutual ordering guarantee between them.
type Parallel struct {
	Steps []Step
}

func (p Parallel) Run(ctx context.Context, agentCtx agent.Context) ([]agent.Output, error) {
	outputs := make([]agent.Output, len(p.Steps))

	g, gctx := errgroup.WithContext(ctx)
	for i, step := range p.Steps {
		i, step := i, step
		g.Go(func() error {
			out, err := step.Run(gctx, agentCtx)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}
