package mcpserver

import "context"

// RegisterBrowserTools publishes the navigate/click/type/screenshot
// tool set backed by backend, and a read-only current-tab query backed
// by state. The handlers take no context: each runs its browser
// operation under context.Background().
func RegisterBrowserTools(registry *Registry, backend *Backend, state *BrowserState) {
	registry.Register(ToolDescriptor{
		Name:         "navigate",
		Description:  "Navigate the browser to a URL",
		Category:     CategoryNavigation,
		IsSideEffect: true,
		InputSchema: map[string]Property{
			"url": {Type: "string", Description: "destination URL", Required: true},
		},
	}, func(args map[string]any) (any, error) {
		url, _ := args["url"].(string)
		if err := backend.Navigate(context.Background(), url); err != nil {
			return nil, err
		}
		return map[string]any{"navigated_to": url}, nil
	})

	registry.Register(ToolDescriptor{
		Name:         "click",
		Description:  "Click an element matching a CSS selector",
		Category:     CategoryEffects,
		IsSideEffect: true,
		InputSchema: map[string]Property{
			"selector": {Type: "string", Description: "CSS selector", Required: true},
		},
	}, func(args map[string]any) (any, error) {
		selector, _ := args["selector"].(string)
		if err := backend.Click(context.Background(), selector); err != nil {
			return nil, err
		}
		return map[string]any{"clicked": selector}, nil
	})

	registry.Register(ToolDescriptor{
		Name:         "type",
		Description:  "Type text into an element matching a CSS selector",
		Category:     CategoryEffects,
		IsSideEffect: true,
		InputSchema: map[string]Property{
			"selector": {Type: "string", Description: "CSS selector", Required: true},
			"text":     {Type: "string", Description: "text to type", Required: true},
		},
	}, func(args map[string]any) (any, error) {
		selector, _ := args["selector"].(string)
		text, _ := args["text"].(string)
		if err := backend.Type(context.Background(), selector, text); err != nil {
			return nil, err
		}
		return map[string]any{"typed_into": selector}, nil
	})

	registry.Register(ToolDescriptor{
		Name:         "screenshot",
		Description:  "Capture a screenshot of the current page",
		Category:     CategoryEffects,
		IsSideEffect: true,
		InputSchema: map[string]Property{
			"full_page": {Type: "boolean", Description: "capture beyond the viewport", Required: false, Default: false},
		},
	}, func(args map[string]any) (any, error) {
		fullPage, _ := args["full_page"].(bool)
		data, err := backend.Screenshot(context.Background(), fullPage)
		if err != nil {
			return nil, err
		}
		return map[string]any{"bytes": len(data)}, nil
	})

	registry.Register(ToolDescriptor{
		Name:         "current_tab",
		Description:  "Read the current tab as last reported by the extension",
		Category:     CategoryContent,
		IsSideEffect: false,
		InputSchema:  map[string]Property{},
	}, func(args map[string]any) (any, error) {
		return state.CurrentPage(), nil
	})
}
