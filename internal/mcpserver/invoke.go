package mcpserver

import (
	"context"
	"fmt"

	"github.com/os-ghost/core/internal/ghosterr"
	"github.com/os-ghost/core/internal/logging"
	"github.com/os-ghost/core/internal/policy"
)

func missingArgError(name string) error {
	return fmt.Errorf("%w: missing required argument %q", ghosterr.ErrInvalidParams, name)
}

// ActionEnqueuer is the subset of internal/queue.Queue invoke() needs
// to defer a side-effecting tool call to human approval. A structural
// interface, mirroring internal/eventbus.ActionEnqueuer, so this
// package doesn't import internal/queue directly.
type ActionEnqueuer interface {
	Add(actionType, description, target string, risk policy.Risk, arguments map[string]any) uint64
}

// PreviewStarter is the subset of internal/rollback.PreviewManager
// invoke() needs to pair a queued action with a preview.
type PreviewStarter interface {
	StartPreview(actionID uint64, description string, risk policy.Risk) uint64
}

// Invoker resolves autonomy and runs (or defers) one tool call, per
// spec.md §4.9's invoke() steps. It's the structural implementation of
// internal/orchestrator.MCPHandle.
type Invoker struct {
	registry *Registry
	pol      *policy.Policy
	queue    ActionEnqueuer
	preview  PreviewStarter
	effects  chan map[string]any
}

// NewInvoker builds an Invoker over registry, gated by pol, deferring
// non-autonomous calls to queue/preview, and placing executed
// side-effect frames on effects (the shared MCP effect channel §4.9
// describes the connection handler draining).
func NewInvoker(registry *Registry, pol *policy.Policy, queue ActionEnqueuer, preview PreviewStarter, effects chan map[string]any) *Invoker {
	return &Invoker{registry: registry, pol: pol, queue: queue, preview: preview, effects: effects}
}

// Invoke implements internal/orchestrator.MCPHandle.
func (inv *Invoker) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	tool, ok := inv.registry.get(name)
	if !ok {
		return "", fmt.Errorf("%w: unknown tool %q", ghosterr.ErrInvalidParams, name)
	}
	if err := validateArgs(tool.descriptor.InputSchema, args); err != nil {
		return "", err
	}

	if !tool.descriptor.IsSideEffect {
		result, err := tool.execute(args)
		if err != nil {
			return "", err
		}
		return jsonString(result)
	}

	settings := inv.pol.Load()
	switch settings.AutonomyLevel {
	case policy.Observer:
		return "", fmt.Errorf("%w: observer autonomy rejects side-effecting tool %q", ghosterr.ErrConsentDenied, name)

	case policy.Suggester, policy.Supervised:
		risk := sideEffectRisk(name)
		id := inv.queue.Add(name, tool.descriptor.Description, targetOf(args), risk, args)
		if inv.preview != nil {
			inv.preview.StartPreview(id, tool.descriptor.Description, risk)
		}
		logging.MCP("tool %q queued for approval as action %d", name, id)
		return jsonString(map[string]any{"status": "queued_for_approval", "action_id": id})

	case policy.Autonomous:
		result, err := tool.execute(args)
		if err != nil {
			return "", err
		}
		if inv.effects != nil {
			select {
			case inv.effects <- map[string]any{"tool": name, "args": args, "result": result}:
			default:
				logging.MCPWarn("effect channel full, dropping %q effect frame", name)
			}
		}
		return jsonString(result)

	default:
		return "", fmt.Errorf("%w: unrecognized autonomy level %q", ghosterr.ErrConsentDenied, settings.AutonomyLevel)
	}
}

// sideEffectRisk assigns a conservative default risk tier to a
// side-effecting tool by name, used only when queuing for approval.
func sideEffectRisk(name string) policy.Risk {
	switch name {
	case "click", "type", "navigate":
		return policy.RiskMedium
	default:
		return policy.RiskLow
	}
}

func targetOf(args map[string]any) string {
	if v, ok := args["url"].(string); ok {
		return v
	}
	if v, ok := args["selector"].(string); ok {
		return v
	}
	return ""
}
