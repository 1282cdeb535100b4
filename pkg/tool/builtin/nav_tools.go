package builtin

import (
	"context"

	"github.com/veilhq/veil/pkg/browser"
)

// NavigateTool loads a URL in a browser instance.
type NavigateTool struct {
	Store *browser.Store
}

func (t *NavigateTool) Name() string {
	return "navigate"
}

func (t *NavigateTool) Description() string {
	return "Navigate a browser instance to a URL and wait for the page to load."
}

func (t *NavigateTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"url": {
				Type:        "string",
				Description: "URL to navigate to",
			},
			"wait_until": {
				Type:        "string",
				Description: "Load milestone to wait for",
				Enum:        []string{"load", "domcontentloaded", "networkidle"},
				Default:     "domcontentloaded",
			},
		},
		Required: []string{"instance_id", "url"},
	}
}

func (t *NavigateTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *NavigateTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	url, err := requireString(params, "url")
	if err != nil {
		return toolError(err), nil
	}

	result, err := store.Navigate(ctx, instanceID, url, parseString(params, "wait_until"))
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}

// GoBackTool navigates back in session history.
type GoBackTool struct {
	Store *browser.Store
}

func (t *GoBackTool) Name() string {
	return "go_back"
}

func (t *GoBackTool) Description() string {
	return "Navigate back in the browser history."
}

func (t *GoBackTool) Parameters() ParameterSchema {
	return instanceOnlySchema()
}

func (t *GoBackTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *GoBackTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	return runInstanceCommand(ctx, t.Store, params, func(ctx context.Context, store *browser.Store, id string) (map[string]any, error) {
		return store.GoBack(ctx, id)
	})
}

// GoForwardTool navigates forward in session history.
type GoForwardTool struct {
	Store *browser.Store
}

func (t *GoForwardTool) Name() string {
	return "go_forward"
}

func (t *GoForwardTool) Description() string {
	return "Navigate forward in the browser history."
}

func (t *GoForwardTool) Parameters() ParameterSchema {
	return instanceOnlySchema()
}

func (t *GoForwardTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *GoForwardTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	return runInstanceCommand(ctx, t.Store, params, func(ctx context.Context, store *browser.Store, id string) (map[string]any, error) {
		return store.GoForward(ctx, id)
	})
}

// ReloadPageTool reloads the current page.
type ReloadPageTool struct {
	Store *browser.Store
}

func (t *ReloadPageTool) Name() string {
	return "reload_page"
}

func (t *ReloadPageTool) Description() string {
	return "Reload the current page in a browser instance."
}

func (t *ReloadPageTool) Parameters() ParameterSchema {
	return instanceOnlySchema()
}

func (t *ReloadPageTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *ReloadPageTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	return runInstanceCommand(ctx, t.Store, params, func(ctx context.Context, store *browser.Store, id string) (map[string]any, error) {
		return store.Reload(ctx, id)
	})
}

func instanceOnlySchema() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
		},
		Required: []string{"instance_id"},
	}
}

// runInstanceCommand handles the shared resolve/validate/run/wrap cycle
// for tools whose only input is an instance id.
func runInstanceCommand(
	ctx context.Context,
	store *browser.Store,
	params map[string]any,
	run func(context.Context, *browser.Store, string) (map[string]any, error),
) (*Result, error) {
	resolved, err := resolveStore(store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	result, err := run(ctx, resolved, instanceID)
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}
