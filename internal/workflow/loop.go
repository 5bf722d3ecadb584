package workflow

import (
	"context"
	"time"

	"github.com/os-ghost/core/internal/agent"
	"github.com/os-ghost/core/internal/logging"
)

// Loop repeats a child step up to MaxIterations or until the child's
// NextAction is Stop or PuzzleSolved, waiting at least MinDelay between
// iterations. It tracks a small accumulator to detect "no progress" —
// consecutive iterations whose Result is unchanged — and requests a
// plan revision once NoProgressLimit is reached.
type Loop struct {
	Child            Step
	MaxIterations    int
	MinDelay         time.Duration
	NoProgressLimit  int
}

// LoopResult carries the loop's final output plus whether it exited because
// no progress was being made.
type LoopResult struct {
	Output            agent.Output
	Iterations        int
	NeedsPlanRevision bool
}

func (l Loop) Run(ctx context.Context, agentCtx agent.Context) (LoopResult, error) {
	current := agentCtx
	var last agent.Output
	noProgress := 0

	maxIter := l.MaxIterations
	if maxIter <= 0 {
		maxIter = 1
	}

	for i := 0; i < maxIter; i++ {
		out, err := l.Child.Run(ctx, current)
		if err != nil {
			return LoopResult{}, err
		}

		if out.Result == last.Result {
			noProgress++
		} else {
			noProgress = 0
		}
		last = out
		current = current.WithPreviousOutput(out.Result)

		if out.Next == agent.NextStop || out.Next == agent.NextPuzzleSolved {
			return LoopResult{Output: out, Iterations: i + 1}, nil
		}
		if l.NoProgressLimit > 0 && noProgress >= l.NoProgressLimit {
			logging.Workflow("loop detected no progress after %d iterations, requesting plan revision", i+1)
			return LoopResult{Output: out, Iterations: i + 1, NeedsPlanRevision: true}, nil
		}

		if l.MinDelay > 0 && i < maxIter-1 {
			select {
			case <-ctx.Done():
				return LoopResult{}, ctx.Err()
			case <-time.After(l.MinDelay):
			}
		}
	}

	return LoopResult{Output: last, Iterations: maxIter}, nil
}
