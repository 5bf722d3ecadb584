package agent

import (
	"context"
	"fmt"

	"github.com/os-ghost/core/internal/provider"
)

// Completer is the subset of provider.Router the companion agent needs.
type Completer interface {
	Call(ctx context.Context, class provider.Class, systemPrompt, userPrompt string) (string, error)
}

// companionResponse is the structured shape the companion agent asks
// its provider for: a user-facing message plus the strategy label
// orchestrator.deriveGhostState reads from Output.Data["strategy"].
type companionResponse struct {
	Message  string `json:"message"`
	Strategy string `json:"strategy"`
	Solved   bool   `json:"solved"`
}

const companionSystemPrompt = `You are a screen-aware desktop companion helping the user with the
task on their screen. Reply with JSON only: {"message": "...", "strategy":
"verify|focus|explore|celebrate", "solved": false}.`

// Companion is the default conversational agent: it hands the task
// description and recent page content to the provider router and
// parses the structured reply per §4.6's output-parsing discipline.
type Companion struct {
	Base
	Provider Completer
	Class    provider.Class
}

// NewCompanion builds the companion agent bound to a Completer (normally
// *provider.Router) and the routing class its calls should use.
func NewCompanion(completer Completer, class provider.Class) *Companion {
	return &Companion{
		Base:     Base{AgentName: "companion", AgentDescription: "conversational screen-aware companion"},
		Provider: completer,
		Class:    class,
	}
}

func (c *Companion) CanHandle(ctx Context) bool {
	return ctx.TaskDescription != ""
}

func (c *Companion) Process(ctx context.Context, agentCtx Context) (Output, error) {
	userPrompt := fmt.Sprintf("Task: %s\nPage: %s (%s)\n", agentCtx.TaskDescription, agentCtx.CurrentTitle, agentCtx.CurrentURL)
	if agentCtx.PageContent != "" {
		userPrompt += "Content excerpt: " + agentCtx.PageContent + "\n"
	}

	raw, err := c.Provider.Call(ctx, c.Class, companionSystemPrompt, userPrompt)
	if err != nil {
		return Output{}, fmt.Errorf("companion: provider call: %w", err)
	}

	var resp companionResponse
	if perr := ParseStructured(raw, &resp); perr != nil {
		return FailSafe(c.Name(), "companion: could not parse provider response"), nil
	}

	next := NextContinue
	if resp.Solved {
		next = NextPuzzleSolved
	}
	return Output{
		AgentName:  c.Name(),
		Result:     resp.Message,
		Confidence: 0.8,
		Next:       next,
		Data:       map[string]any{"strategy": resp.Strategy},
	}, nil
}
