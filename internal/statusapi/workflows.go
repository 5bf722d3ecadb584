package statusapi

import (
	"context"
	"fmt"
	"sync"

	"github.com/os-ghost/core/internal/agent"
	"github.com/os-ghost/core/internal/orchestrator"
	"github.com/os-ghost/core/internal/workflow"
)

// settableRegistry is workflow.Registry plus the Set method
// workflow.NewMapRegistry's concrete (unexported) type happens to
// export; satisfied structurally without naming that type.
type settableRegistry interface {
	workflow.Registry
	Set(name string, step workflow.Step)
}

// savedWorkflow pairs a recorded Workflow with the registry that can
// resolve its step names back to live steps. Workflows imported via
// handleRegisterWorkflow (rather than recorded in this process) get an
// empty registry, so replaying them fails fast with ErrNotFound.
type savedWorkflow struct {
	wf       workflow.Workflow
	registry settableRegistry
}

// recordingSession is one in-progress POST /record/start .. /record/stop
// span: every status-api.execute call made while it's active is
// captured as a uniquely-named step in its own registry.
type recordingSession struct {
	id       string
	registry settableRegistry
	steps    []workflow.RecordedStep
}

// workflowStore holds every completed recording plus the at-most-one
// in-progress recording session, guarded by a single mutex since both
// are touched from the same handful of HTTP handlers.
type workflowStore struct {
	mu      sync.Mutex
	saved   map[string]savedWorkflow
	active  *recordingSession
}

func newWorkflowStore() *workflowStore {
	return &workflowStore{saved: make(map[string]savedWorkflow)}
}

// executeTurnStep replays one status-api /execute call: it re-invokes
// the orchestrator with the same input text captured at recording time,
// live, rather than replaying the cached output verbatim.
type executeTurnStep struct {
	srv   *Server
	input string
}

func (e executeTurnStep) Run(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
	agentCtx.TaskDescription = e.input
	result, err := e.srv.deps.Orchestrator.Process(ctx, agentCtx, e.srv.deps.MCP)
	if err != nil {
		return agent.Output{}, err
	}
	next := agent.NextContinue
	if result.Solved {
		next = agent.NextPuzzleSolved
	}
	return agent.Output{AgentName: "status-api", Result: result.Message, Next: next}, nil
}

// recordTurnIfActive appends one /execute call to the in-progress
// recording session, if any, under a fresh step name backed by an
// executeTurnStep closure so the turn replays live rather than from a
// cached output.
func (s *Server) recordTurnIfActive(task string, result orchestrator.OrchestrationResult) {
	s.workflows.mu.Lock()
	defer s.workflows.mu.Unlock()

	session := s.workflows.active
	if session == nil {
		return
	}

	name := fmt.Sprintf("turn-%d", len(session.steps)+1)
	session.registry.Set(name, executeTurnStep{srv: s, input: task})
	session.steps = append(session.steps, workflow.RecordedStep{
		Name: name,
		Output: agent.Output{
			AgentName: "status-api",
			Result:    result.Message,
			Next:      agent.NextContinue,
		},
	})
}
