package mcpserver

// Category classifies a tool for discover_tools(category?) filtering.
type Category string

const (
	CategoryNavigation Category = "navigation"
	CategoryEffects    Category = "effects"
	CategoryContent    Category = "content"
)

// Property describes one entry of a ToolDescriptor's input schema.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// ToolDescriptor is the publishable shape of one MCP tool, per spec.md
// §6's tool descriptor schema.
type ToolDescriptor struct {
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Category     Category            `json:"category"`
	IsSideEffect bool                `json:"is_side_effect"`
	InputSchema  map[string]Property `json:"input_schema"`
}

// Execute runs the tool's side effect for args that have already passed
// schema validation, returning a JSON-serializable result.
type Execute func(args map[string]any) (any, error)

type registeredTool struct {
	descriptor ToolDescriptor
	execute    Execute
}

// Registry holds the published tool set.
type Registry struct {
	tools map[string]registeredTool
}

// NewRegistry builds an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]registeredTool)}
}

// Register publishes a tool under descriptor.Name.
func (r *Registry) Register(descriptor ToolDescriptor, execute Execute) {
	r.tools[descriptor.Name] = registeredTool{descriptor: descriptor, execute: execute}
}

// Discover returns descriptors, optionally filtered by category.
func (r *Registry) Discover(category Category) []ToolDescriptor {
	out := make([]ToolDescriptor, 0, len(r.tools))
	for _, t := range r.tools {
		if category != "" && t.descriptor.Category != category {
			continue
		}
		out = append(out, t.descriptor)
	}
	return out
}

func (r *Registry) get(name string) (registeredTool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// validateArgs checks args against a tool's input schema: every
// property marked Required must be present.
func validateArgs(schema map[string]Property, args map[string]any) error {
	for name, prop := range schema {
		if !prop.Required {
			continue
		}
		if _, ok := args[name]; !ok {
			return missingArgError(name)
		}
	}
	return nil
}
