package builtin

import (
	"context"
	"errors"
	"strings"

	"github.com/veilhq/veil/pkg/browser"
)

// SpawnBrowserTool creates a new cloud antidetect browser session.
type SpawnBrowserTool struct {
	Store *browser.Store
}

func (t *SpawnBrowserTool) Name() string {
	return "spawn_browser"
}

func (t *SpawnBrowserTool) Description() string {
	return "Spawn a cloud antidetect browser session with an auto-allocated mobile proxy and fingerprint. Requires an x402 USDC payment signature or an internal key. When payment is required, returns wallet addresses and retry instructions instead of failing."
}

func (t *SpawnBrowserTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"country": {
				Type:        "string",
				Description: "Proxy country code; random if omitted",
				Enum:        []string{"US", "GB", "DE", "FR", "ES", "PL"},
			},
			"duration_minutes": {
				Type:        "integer",
				Description: "Session length in minutes (15-480, default 60)",
				Default:     60,
			},
			"profile_id": {
				Type:        "string",
				Description: "Identity bundle ID to restore (cookies, localStorage, fingerprint)",
			},
			"payment_signature": {
				Type:        "string",
				Description: "x402 USDC transaction hash (Base or Solana)",
			},
			"user_agent": {
				Type:        "string",
				Description: "Optional user-agent override",
			},
			"viewport_width": {
				Type:        "integer",
				Description: "Viewport width in pixels",
				Default:     1920,
			},
			"viewport_height": {
				Type:        "integer",
				Description: "Viewport height in pixels",
				Default:     1080,
			},
		},
	}
}

func (t *SpawnBrowserTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *SpawnBrowserTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}

	opts := browser.DefaultOptions()
	opts.Country = strings.TrimSpace(parseString(params, "country"))
	opts.DurationMinutes = parseInt(params, "duration_minutes", opts.DurationMinutes)
	opts.ProfileID = strings.TrimSpace(parseString(params, "profile_id"))
	opts.PaymentSignature = strings.TrimSpace(parseString(params, "payment_signature"))
	opts.UserAgent = strings.TrimSpace(parseString(params, "user_agent"))
	opts.ViewportWidth = parseInt(params, "viewport_width", opts.ViewportWidth)
	opts.ViewportHeight = parseInt(params, "viewport_height", opts.ViewportHeight)

	instance, err := store.Create(ctx, opts)
	if err != nil {
		var perr *browser.PaymentRequiredError
		if errors.As(err, &perr) {
			return paymentGuidance(perr), nil
		}
		return toolError(err), nil
	}

	data := map[string]any{
		"instance_id": instance.ID,
		"state":       string(instance.State),
		"viewport": map[string]any{
			"width":  instance.Viewport.Width,
			"height": instance.Viewport.Height,
		},
	}
	if session, ok := store.SessionData(instance.ID); ok {
		if session.ExpiresAt != "" {
			data["expires_at"] = session.ExpiresAt
		}
		if len(session.Proxy) > 0 {
			data["proxy"] = session.Proxy
		}
		if len(session.Fingerprint) > 0 {
			data["fingerprint"] = session.Fingerprint
		}
		if session.LoadedProfileID != "" {
			data["loaded_profile_id"] = session.LoadedProfileID
		}
	}
	return &Result{Success: true, Data: data}, nil
}

// ListInstancesTool lists all active cloud browser sessions.
type ListInstancesTool struct {
	Store *browser.Store
}

func (t *ListInstancesTool) Name() string {
	return "list_instances"
}

func (t *ListInstancesTool) Description() string {
	return "List all active cloud browser sessions with their cached state."
}

func (t *ListInstancesTool) Parameters() ParameterSchema {
	return ParameterSchema{Type: "object", Properties: map[string]PropertySchema{}}
}

func (t *ListInstancesTool) Execute(params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instances := store.List()
	entries := make([]map[string]any, 0, len(instances))
	for _, inst := range instances {
		entry := map[string]any{
			"instance_id": inst.ID,
			"state":       string(inst.State),
			"current_url": inst.CurrentURL,
			"title":       inst.Title,
		}
		if session, ok := store.SessionData(inst.ID); ok {
			if session.ExpiresAt != "" {
				entry["expires_at"] = session.ExpiresAt
			}
			if country, ok := session.Proxy["country"]; ok {
				entry["proxy_country"] = country
			}
		}
		entries = append(entries, entry)
	}
	return &Result{
		Success: true,
		Data: map[string]any{
			"count":     len(entries),
			"instances": entries,
		},
	}, nil
}

// CloseInstanceTool closes a cloud browser session.
type CloseInstanceTool struct {
	Store *browser.Store
}

func (t *CloseInstanceTool) Name() string {
	return "close_instance"
}

func (t *CloseInstanceTool) Description() string {
	return "Close a cloud browser session and release its proxy and fingerprint."
}

func (t *CloseInstanceTool) Parameters() ParameterSchema {
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

func (t *CloseInstanceTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *CloseInstanceTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	removed := store.Remove(ctx, instanceID)
	return &Result{
		Success: true,
		Data: map[string]any{
			"instance_id": instanceID,
			"closed":      removed,
		},
	}, nil
}

// GetInstanceStateTool reports detailed state for one instance.
type GetInstanceStateTool struct {
	Store *browser.Store
}

func (t *GetInstanceStateTool) Name() string {
	return "get_instance_state"
}

func (t *GetInstanceStateTool) Description() string {
	return "Get detailed state of a browser instance: URL, title, cookies, viewport. Falls back to the cached view when the remote call fails."
}

func (t *GetInstanceStateTool) Parameters() ParameterSchema {
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

func (t *GetInstanceStateTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *GetInstanceStateTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}

	if state, err := store.CurrentPageState(ctx, instanceID); err == nil {
		return &Result{
			Success: true,
			Data: map[string]any{
				"instance_id": state.InstanceID,
				"url":         state.URL,
				"title":       state.Title,
				"ready_state": state.ReadyState,
				"cookies":     state.Cookies,
				"viewport": map[string]any{
					"width":  state.Viewport.Width,
					"height": state.Viewport.Height,
				},
			},
		}, nil
	}

	inst, ok := store.Get(instanceID)
	if !ok {
		return toolError(browser.ErrUnknownInstance), nil
	}
	return &Result{
		Success: true,
		Data: map[string]any{
			"instance_id": inst.ID,
			"state":       string(inst.State),
			"current_url": inst.CurrentURL,
			"title":       inst.Title,
		},
	}, nil
}
