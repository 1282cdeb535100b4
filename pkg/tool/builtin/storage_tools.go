package builtin

import (
	"context"
	"fmt"

	"github.com/veilhq/veil/pkg/browser"
)

// GetCookiesTool returns all cookies for a session.
type GetCookiesTool struct {
	Store *browser.Store
}

func (t *GetCookiesTool) Name() string {
	return "get_cookies"
}

func (t *GetCookiesTool) Description() string {
	return "Get all cookies for a browser session."
}

func (t *GetCookiesTool) Parameters() ParameterSchema {
	return instanceOnlySchema()
}

func (t *GetCookiesTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *GetCookiesTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	return runInstanceCommand(ctx, t.Store, params, func(ctx context.Context, store *browser.Store, id string) (map[string]any, error) {
		return store.Cookies(ctx, id)
	})
}

// SetCookieTool sets one cookie.
type SetCookieTool struct {
	Store *browser.Store
}

func (t *SetCookieTool) Name() string {
	return "set_cookie"
}

func (t *SetCookieTool) Description() string {
	return "Set a cookie in a browser session."
}

func (t *SetCookieTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"name": {
				Type:        "string",
				Description: "Cookie name",
			},
			"value": {
				Type:        "string",
				Description: "Cookie value",
			},
			"domain": {
				Type:        "string",
				Description: "Cookie domain; defaults to the current page domain",
			},
			"path": {
				Type:        "string",
				Description: "Cookie path",
				Default:     "/",
			},
			"secure": {
				Type:        "boolean",
				Description: "Secure flag",
				Default:     false,
			},
			"http_only": {
				Type:        "boolean",
				Description: "HttpOnly flag",
				Default:     false,
			},
			"same_site": {
				Type:        "string",
				Description: "SameSite policy",
				Enum:        []string{"Strict", "Lax", "None"},
			},
		},
		Required: []string{"instance_id", "name", "value"},
	}
}

func (t *SetCookieTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *SetCookieTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	name, err := requireString(params, "name")
	if err != nil {
		return toolError(err), nil
	}
	value := parseString(params, "value")
	if value == "" {
		return toolError(fmt.Errorf("value is required")), nil
	}

	cookie := map[string]any{
		"name":     name,
		"value":    value,
		"path":     "/",
		"secure":   parseBool(params, "secure", false),
		"httpOnly": parseBool(params, "http_only", false),
	}
	if path := parseString(params, "path"); path != "" {
		cookie["path"] = path
	}
	if domain := parseString(params, "domain"); domain != "" {
		cookie["domain"] = domain
	}
	if sameSite := parseString(params, "same_site"); sameSite != "" {
		cookie["sameSite"] = sameSite
	}

	result, err := store.SetCookie(ctx, instanceID, cookie)
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}

// ClearCookiesTool removes all cookies.
type ClearCookiesTool struct {
	Store *browser.Store
}

func (t *ClearCookiesTool) Name() string {
	return "clear_cookies"
}

func (t *ClearCookiesTool) Description() string {
	return "Clear all cookies in a browser session."
}

func (t *ClearCookiesTool) Parameters() ParameterSchema {
	return instanceOnlySchema()
}

func (t *ClearCookiesTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *ClearCookiesTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	return runInstanceCommand(ctx, t.Store, params, func(ctx context.Context, store *browser.Store, id string) (map[string]any, error) {
		return store.ClearCookies(ctx, id)
	})
}

// GetLocalStorageTool reads localStorage for the current page.
type GetLocalStorageTool struct {
	Store *browser.Store
}

func (t *GetLocalStorageTool) Name() string {
	return "get_local_storage"
}

func (t *GetLocalStorageTool) Description() string {
	return "Get all localStorage key-value pairs for the current page origin."
}

func (t *GetLocalStorageTool) Parameters() ParameterSchema {
	return instanceOnlySchema()
}

func (t *GetLocalStorageTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *GetLocalStorageTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	return runInstanceCommand(ctx, t.Store, params, func(ctx context.Context, store *browser.Store, id string) (map[string]any, error) {
		return store.LocalStorage(ctx, id)
	})
}

// SetLocalStorageTool writes localStorage pairs.
type SetLocalStorageTool struct {
	Store *browser.Store
}

func (t *SetLocalStorageTool) Name() string {
	return "set_local_storage"
}

func (t *SetLocalStorageTool) Description() string {
	return "Set localStorage values for the current page origin. Pass items as a map, or a single key and value."
}

func (t *SetLocalStorageTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"items": {
				Type:        "object",
				Description: "Key-value pairs to store",
			},
			"key": {
				Type:        "string",
				Description: "Single key to set (alternative to items)",
			},
			"value": {
				Type:        "string",
				Description: "Value for key",
			},
		},
		Required: []string{"instance_id"},
	}
}

func (t *SetLocalStorageTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *SetLocalStorageTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}

	items := parseStringMap(params, "items")
	if len(items) == 0 {
		key := parseString(params, "key")
		if key == "" {
			return toolError(fmt.Errorf("provide items, or key and value")), nil
		}
		items = map[string]string{key: parseString(params, "value")}
	}

	result, err := store.SetLocalStorage(ctx, instanceID, items)
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}
