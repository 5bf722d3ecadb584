// Package workflow implements the Workflow Engine (C7): four composition
// primitives (Sequential, Parallel, Loop, Reflection) plus Plan execution
// with verify-and-rollback.
package workflow

import (
	"context"

	"github.com/os-ghost/core/internal/agent"
)

// Step is anything the engine can run against an agent.Context and get
// back an agent.Output.
type Step interface {
	Run(ctx context.Context, agentCtx agent.Context) (agent.Output, error)
}

// AgentStep adapts a single agent.Agent into a Step.
type AgentStep struct {
	Agent agent.Agent
}

func (s AgentStep) Run(ctx context.Context, agentCtx agent.Context) (agent.Output, error) {
	return s.Agent.Process(ctx, agentCtx)
}
