package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/os-ghost/core/internal/agent"
	"github.com/os-ghost/core/internal/store"
	"github.com/os-ghost/core/internal/workflow"
)

type fnStep struct {
	fn func(ctx context.Context, agentCtx agent.Context) (agent.Output, error)
}

func (s fnStep) Run(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
	return s.fn(ctx, agentCtx)
}

func newMemStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMode_DefaultsAndSetters(t *testing.T) {
	o := New(Config{
		LegacyWorkflow: fnStep{fn: func(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
			return agent.Output{Result: "ok", Next: agent.NextContinue}, nil
		}},
	})

	assert.Equal(t, ModeLegacy, o.Mode())

	o.SetGuardrails(true)
	assert.Equal(t, ModeMinimal, o.Mode())

	o.SetPlanning(true)
	assert.Equal(t, ModeStandard, o.Mode())

	o.SetReflection(true)
	assert.Equal(t, ModeFull, o.Mode())
}

func TestDeriveGhostState(t *testing.T) {
	assert.Equal(t, StateCelebrate, deriveGhostState(true, "", 0))
	assert.Equal(t, StateCelebrate, deriveGhostState(false, StrategyCelebrate, 0))
	assert.Equal(t, StateExcited, deriveGhostState(false, StrategyVerify, 0))
	assert.Equal(t, StateSearching, deriveGhostState(false, StrategyFocus, 0))
	assert.Equal(t, StateThinking, deriveGhostState(false, StrategyExplore, 0.5))
	assert.Equal(t, StateIdle, deriveGhostState(false, StrategyExplore, 0.1))
	assert.Equal(t, StateSearching, deriveGhostState(false, "", 0.8))
	assert.Equal(t, StateThinking, deriveGhostState(false, "", 0.5))
	assert.Equal(t, StateIdle, deriveGhostState(false, "", 0.1))
}

func TestProcess_LegacyWorkflow(t *testing.T) {
	legacy := fnStep{fn: func(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
		return agent.Output{Result: "hello there", Next: agent.NextContinue}, nil
	}}
	mem := newMemStore(t)
	o := New(Config{LegacyWorkflow: legacy, Memory: mem})

	result, err := o.Process(context.Background(), agent.Context{Proximity: 0.9}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello there", result.Message)
	assert.Equal(t, StateSearching, result.GhostState)
	assert.False(t, result.Solved)
}

func TestProcess_InputGuardrailShortCircuits(t *testing.T) {
	legacy := fnStep{fn: func(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
		t.Fatal("main workflow should not run when input guardrail rejects")
		return agent.Output{}, nil
	}}
	guard := rejectingGuard{}

	o := New(Config{LegacyWorkflow: legacy, InputGuard: guard, Guardrails: true})
	result, err := o.Process(context.Background(), agent.Context{}, nil)

	require.NoError(t, err)
	assert.Equal(t, StateIdle, result.GhostState)
	assert.NotEqual(t, "", result.Message)
}

type rejectingGuard struct{}

func (rejectingGuard) CheckInput(ctx agent.Context) (bool, string) { return false, "blocked site" }

type redactingGuard struct{}

func (redactingGuard) CheckOutput(text string) (string, bool) { return "[redacted]", true }

func TestProcess_OutputGuardrailRedacts(t *testing.T) {
	legacy := fnStep{fn: func(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
		return agent.Output{Result: "my card is 4111111111111111", Next: agent.NextContinue}, nil
	}}

	o := New(Config{LegacyWorkflow: legacy, OutputGuard: redactingGuard{}, Guardrails: true})
	result, err := o.Process(context.Background(), agent.Context{}, nil)

	require.NoError(t, err)
	assert.Equal(t, "[redacted]", result.Message)
}

func TestProcess_ToolDispatch(t *testing.T) {
	legacy := fnStep{fn: func(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
		return agent.Output{
			Result: "done",
			Next:   agent.NextContinue,
			Data:   map[string]any{"tool_call": map[string]any{"name": "open_tab", "args": map[string]any{"url": "https://example.com"}}},
		}, nil
	}}

	o := New(Config{LegacyWorkflow: legacy})
	result, err := o.Process(context.Background(), agent.Context{}, fakeMCP{})

	require.NoError(t, err)
	require.Len(t, result.ToolEvents, 1)
	assert.Equal(t, "open_tab", result.ToolEvents[0].Name)
	assert.Equal(t, "ok:open_tab", result.ToolEvents[0].Result)
}

type fakeMCP struct{}

func (fakeMCP) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	return "ok:" + name, nil
}

func TestProcess_ReflectionReplacesMessage(t *testing.T) {
	legacy := fnStep{fn: func(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
		return agent.Output{Result: "draft message", Next: agent.NextContinue}, nil
	}}
	gen := fnStep{fn: func(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
		return agent.Output{Result: "polished message"}, nil
	}}
	critic := fnStep{fn: func(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
		return agent.Output{Data: map[string]any{"approved": true}}, nil
	}}

	o := New(Config{
		LegacyWorkflow: legacy,
		Reflection:     workflow.Reflection{Generator: gen, Critic: critic, MaxAttempts: 1},
		ReflectionOn:   true,
	})

	result, err := o.Process(context.Background(), agent.Context{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "polished message", result.Message)
}

func TestInitializeShutdownHealthCheck(t *testing.T) {
	legacy := fnStep{fn: func(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
		return agent.Output{Next: agent.NextContinue}, nil
	}}
	mem := newMemStore(t)
	a := &recordingAgent{Base: agent.Base{AgentName: "narrator"}}

	o := New(Config{LegacyWorkflow: legacy, Memory: mem, Agents: []agent.Agent{a}})

	require.NoError(t, o.Initialize(context.Background()))
	assert.True(t, a.initialized)

	health := o.HealthCheck(context.Background())
	assert.Equal(t, HealthStatus{Healthy: true}, health["narrator"])

	require.NoError(t, o.Shutdown(context.Background()))
	assert.True(t, a.shutdown)
}

type recordingAgent struct {
	agent.Base
	initialized bool
	shutdown    bool
}

func (a *recordingAgent) CanHandle(ctx agent.Context) bool { return true }
func (a *recordingAgent) Process(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
	return agent.Output{}, nil
}
func (a *recordingAgent) Initialize(ctx context.Context) error { a.initialized = true; return nil }
func (a *recordingAgent) Shutdown(ctx context.Context) error   { a.shutdown = true; return nil }
