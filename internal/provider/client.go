// Package provider implements the AI Provider Router (C3): a primary
// (remote, quota-limited) and secondary (local, always-available)
// provider client pair, routed by task class, with a circuit breaker on
// the primary and a rate limiter guarding it.
package provider

import "context"

// Class is the call weight class used to route between primary and
// secondary providers.
type Class int

const (
	// Light calls (dialogue, similarity) prefer the secondary provider.
	Light Class = iota
	// Medium calls (text generation, verification) prefer the primary.
	Medium
	// Heavy calls (vision, structured generation with grounding) prefer
	// the primary and, like Medium, fall back to the secondary once when
	// the primary errors or is rate-limited.
	Heavy
)

func (c Class) String() string {
	switch c {
	case Light:
		return "light"
	case Medium:
		return "medium"
	case Heavy:
		return "heavy"
	default:
		return "unknown"
	}
}

// Client is the minimal surface the Router needs from a provider. It is
// intentionally narrower than the teacher's LLMClient: this domain has
// no tool-calling protocol at the provider layer (tool dispatch happens
// in the orchestrator against MCP tool descriptors, not provider
// function-calling).
type Client interface {
	// Name identifies the provider for telemetry and logging.
	Name() string
	// Complete sends a single prompt and returns the completion text.
	Complete(ctx context.Context, prompt string) (string, error)
	// CompleteWithSystem sends a prompt with a system preamble, used for
	// structured/grounded generation (Heavy class).
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
