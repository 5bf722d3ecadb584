// Package orchestrator implements the Orchestrator (C8): the single
// object that holds every Agent, every composed Workflow, the provider
// Router and the memory store, and runs the seven-step process()
// pipeline over them; the MCP bridge handle is passed in with each
// Process call.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/os-ghost/core/internal/agent"
	"github.com/os-ghost/core/internal/logging"
	"github.com/os-ghost/core/internal/provider"
	"github.com/os-ghost/core/internal/store"
	"github.com/os-ghost/core/internal/workflow"
)

// sessionMemoryTree is the store tree process() writes proximity into.
const sessionMemoryTree = "session_memory"

// ToolCall is what a main-workflow output carries when it wants a tool
// invoked through the MCP bridge (agent.Output.Data["tool_call"]).
type ToolCall struct {
	Name string
	Args map[string]any
}

// ToolCallEvent is the side-effect event process() emits after
// dispatching a ToolCall; it is not re-entered into the pipeline.
type ToolCallEvent struct {
	Name    string
	Result  string
	Err     string
}

// MCPHandle is the subset of the MCP bridge the orchestrator needs:
// tool invocation. Satisfied structurally by internal/mcpserver without
// either package importing the other.
type MCPHandle interface {
	Invoke(ctx context.Context, name string, args map[string]any) (string, error)
}

// InputGuard screens an inbound agent.Context before the main workflow
// runs. Satisfied structurally by internal/guard.
type InputGuard interface {
	CheckInput(ctx agent.Context) (allowed bool, reason string)
}

// OutputGuard screens the final message before it is returned.
// Satisfied structurally by internal/guard.
type OutputGuard interface {
	CheckOutput(text string) (safe string, wasUnsafe bool)
}

// OrchestrationResult is process()'s return value.
type OrchestrationResult struct {
	Message    string
	GhostState GhostState
	Proximity  float64
	Solved     bool
	ToolEvents []ToolCallEvent
}

// Orchestrator wires every agent, the two top-level workflows, the
// provider router, the memory store, and the input/output guards.
type Orchestrator struct {
	agents map[string]agent.Agent

	legacyWorkflow   workflow.Step
	planningWorkflow workflow.Step
	reflection       workflow.Reflection

	router *provider.Router
	memory *store.Store

	inputGuard  InputGuard
	outputGuard OutputGuard

	mode *modeHolder
}

// Config bundles Orchestrator's collaborators at construction time.
type Config struct {
	Agents           []agent.Agent
	LegacyWorkflow   workflow.Step
	PlanningWorkflow workflow.Step
	Reflection       workflow.Reflection
	Router           *provider.Router
	Memory           *store.Store
	InputGuard       InputGuard
	OutputGuard      OutputGuard
	Planning         bool
	ReflectionOn     bool
	Guardrails       bool
}

// New builds an Orchestrator from cfg.
func New(cfg Config) *Orchestrator {
	agents := make(map[string]agent.Agent, len(cfg.Agents))
	for _, a := range cfg.Agents {
		agents[a.Name()] = a
	}

	return &Orchestrator{
		agents:           agents,
		legacyWorkflow:   cfg.LegacyWorkflow,
		planningWorkflow: cfg.PlanningWorkflow,
		reflection:       cfg.Reflection,
		router:           cfg.Router,
		memory:           cfg.Memory,
		inputGuard:       cfg.InputGuard,
		outputGuard:      cfg.OutputGuard,
		mode:             newModeHolder(cfg.Planning, cfg.ReflectionOn, cfg.Guardrails),
	}
}

// Mode returns the orchestrator's current operating mode.
func (o *Orchestrator) Mode() Mode { return o.mode.Mode() }

// SetPlanning, SetReflection, SetGuardrails project a single capability
// flag into the current Mode.
func (o *Orchestrator) SetPlanning(on bool)   { o.mode.SetPlanning(on) }
func (o *Orchestrator) SetReflection(on bool) { o.mode.SetReflection(on) }
func (o *Orchestrator) SetGuardrails(on bool) { o.mode.SetGuardrails(on) }

// Process runs the seven-step pipeline described in spec.md §4.8.
func (o *Orchestrator) Process(ctx context.Context, agentCtx agent.Context, mcp MCPHandle) (OrchestrationResult, error) {
	timer := logging.StartTimer(logging.CategoryOrchestrator, "process")
	defer timer.Stop()

	flags := o.mode.flagsNow()

	// 1. Input guardrail.
	if flags.guardrails && o.inputGuard != nil {
		if allowed, reason := o.inputGuard.CheckInput(agentCtx); !allowed {
			logging.OrchestratorWarn("input guardrail rejected request: %s", reason)
			return OrchestrationResult{
				Message:    "I can't help with that right now.",
				GhostState: StateIdle,
				Proximity:  0,
			}, nil
		}
	}

	// 2. Main workflow.
	mainStep := o.legacyWorkflow
	if flags.planning && o.planningWorkflow != nil {
		mainStep = o.planningWorkflow
	}
	if mainStep == nil {
		return OrchestrationResult{}, fmt.Errorf("orchestrator: no main workflow configured")
	}
	out, err := mainStep.Run(ctx, agentCtx)
	if err != nil {
		return OrchestrationResult{}, fmt.Errorf("orchestrator: main workflow: %w", err)
	}

	// 3. Tool dispatch.
	var toolEvents []ToolCallEvent
	if call, ok := extractToolCall(out); ok && mcp != nil {
		result, err := mcp.Invoke(ctx, call.Name, call.Args)
		event := ToolCallEvent{Name: call.Name, Result: result}
		if err != nil {
			event.Err = err.Error()
		}
		toolEvents = append(toolEvents, event)
	}

	solved := out.Next == agent.NextPuzzleSolved
	message := out.Result

	// 4. Reflection.
	if flags.reflection && message != "" && !solved && o.reflection.Generator != nil {
		reflOut, rerr := o.reflection.Run(ctx, agentCtx.WithPreviousOutput(message))
		if rerr != nil {
			logging.OrchestratorWarn("reflection pass failed: %v", rerr)
		} else if approved, _ := reflOut.Data["reflection_approved"].(bool); approved {
			message = reflOut.Result
		}
	}

	// 5. Output guardrail.
	if flags.guardrails && o.outputGuard != nil {
		if safe, unsafe := o.outputGuard.CheckOutput(message); unsafe {
			logging.OrchestratorWarn("output guardrail redacted final message")
			message = safe
		}
	}

	// 6. State derivation.
	strategy := Strategy("")
	if s, ok := out.Data["strategy"].(string); ok {
		strategy = Strategy(s)
	}
	proximity := agentCtx.Proximity
	state := deriveGhostState(solved, strategy, proximity)

	// 7. Memory write.
	if o.memory != nil {
		if err := o.memory.Set(sessionMemoryTree, "last_proximity", []byte(fmt.Sprintf("%f", proximity))); err != nil {
			logging.OrchestratorWarn("failed to persist session proximity: %v", err)
		}
	}

	return OrchestrationResult{
		Message:    message,
		GhostState: state,
		Proximity:  proximity,
		Solved:     solved,
		ToolEvents: toolEvents,
	}, nil
}

func extractToolCall(out agent.Output) (ToolCall, bool) {
	raw, ok := out.Data["tool_call"]
	if !ok {
		return ToolCall{}, false
	}
	switch v := raw.(type) {
	case ToolCall:
		return v, true
	case map[string]any:
		name, _ := v["name"].(string)
		args, _ := v["args"].(map[string]any)
		if name == "" {
			return ToolCall{}, false
		}
		return ToolCall{Name: name, Args: args}, true
	default:
		return ToolCall{}, false
	}
}
