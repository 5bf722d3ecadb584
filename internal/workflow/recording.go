package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/os-ghost/core/internal/agent"
	"github.com/os-ghost/core/internal/ghosterr"
)

// RecordedStep is one entry of a recorded Workflow: the name a step was
// registered under (resolved again at replay time) and the output it
// produced when it actually ran.
type RecordedStep struct {
	Name   string       `json:"name"`
	Output agent.Output `json:"output"`
}

// Workflow is a named, recorded sequence of steps (original_source's
// workflow/recording.rs entity), replayable as a fresh Sequential run
// once its step names are resolved against a live registry.
type Workflow struct {
	ID        string         `json:"id"`
	Steps     []RecordedStep `json:"steps"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// namedStep pairs a Step with the name it's recorded under.
type namedStep struct {
	name string
	step Step
}

// Recorder wraps a live Sequential run, capturing each named step's
// output into a Workflow as it executes (original_source's
// workflow/recording.rs).
type Recorder struct {
	id    string
	steps []namedStep
}

// NewRecorder starts a recording session under id.
func NewRecorder(id string) *Recorder {
	return &Recorder{id: id}
}

// Add appends a named step to the sequence being recorded.
func (r *Recorder) Add(name string, step Step) {
	r.steps = append(r.steps, namedStep{name: name, step: step})
}

// Run executes the recorded sequence as a Sequential, in the same
// accumulate-and-stop-early fashion, returning both the final output
// and the completed Workflow recording.
func (r *Recorder) Run(ctx context.Context, agentCtx agent.Context) (agent.Output, Workflow, error) {
	wf := Workflow{ID: r.id, RecordedAt: time.Now()}

	current := agentCtx
	var last agent.Output
	for _, ns := range r.steps {
		out, err := ns.step.Run(ctx, current)
		if err != nil {
			return last, wf, err
		}
		wf.Steps = append(wf.Steps, RecordedStep{Name: ns.name, Output: out})
		current = current.WithPreviousOutput(out.Result)
		last = out
		if out.Next == agent.NextStop || out.Next == agent.NextPuzzleSolved {
			break
		}
	}
	return last, wf, nil
}

// Registry resolves a step name back to a live Step at replay time.
type Registry interface {
	Resolve(name string) (Step, bool)
}

// mapRegistry is the simplest Registry: a name->Step lookup table.
type mapRegistry struct {
	mu    sync.RWMutex
	steps map[string]Step
}

// NewMapRegistry builds a Registry backed by an in-memory map, the
// structure a caller populates with the same named steps a Recorder
// drew from.
func NewMapRegistry() *mapRegistry {
	return &mapRegistry{steps: make(map[string]Step)}
}

func (r *mapRegistry) Set(name string, step Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps[name] = step
}

func (r *mapRegistry) Resolve(name string) (Step, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.steps[name]
	return s, ok
}

// Replay rebuilds wf's step sequence against registry and runs it as a
// Sequential, producing a fresh run rather than replaying cached
// outputs verbatim — a step's live behavior may differ since the world
// may have changed since it was recorded.
func Replay(ctx context.Context, wf Workflow, registry Registry, agentCtx agent.Context) (agent.Output, error) {
	steps := make([]Step, 0, len(wf.Steps))
	for _, recorded := range wf.Steps {
		step, ok := registry.Resolve(recorded.Name)
		if !ok {
			return agent.Output{}, fmt.Errorf("%w: workflow %s: no step registered for %q", ghosterr.ErrNotFound, wf.ID, recorded.Name)
		}
		steps = append(steps, step)
	}
	return Sequential{Steps: steps}.Run(ctx, agentCtx)
}
