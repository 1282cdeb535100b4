package builtin

import (
	"context"

	"github.com/veilhq/veil/pkg/browser"
)

// SaveProfileTool persists the current session state as an identity bundle.
type SaveProfileTool struct {
	Store *browser.Store
}

func (t *SaveProfileTool) Name() string {
	return "save_profile"
}

func (t *SaveProfileTool) Description() string {
	return "Save the session's cookies, localStorage, fingerprint, and proxy binding as a reusable identity bundle."
}

func (t *SaveProfileTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"name": {
				Type:        "string",
				Description: "Optional profile name",
			},
		},
		Required: []string{"instance_id"},
	}
}

func (t *SaveProfileTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *SaveProfileTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	result, err := store.SaveProfile(ctx, instanceID, parseString(params, "name"))
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}

// LoadProfileTool restores an identity bundle into a live session.
type LoadProfileTool struct {
	Store *browser.Store
}

func (t *LoadProfileTool) Name() string {
	return "load_profile"
}

func (t *LoadProfileTool) Description() string {
	return "Load a saved identity bundle into a running session."
}

func (t *LoadProfileTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"profile_id": {
				Type:        "string",
				Description: "Identity bundle ID",
			},
		},
		Required: []string{"instance_id", "profile_id"},
	}
}

func (t *LoadProfileTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *LoadProfileTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	profileID, err := requireString(params, "profile_id")
	if err != nil {
		return toolError(err), nil
	}
	result, err := store.LoadProfile(ctx, instanceID, profileID)
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}

// ListProfilesTool lists all saved identity bundles.
type ListProfilesTool struct {
	Store *browser.Store
}

func (t *ListProfilesTool) Name() string {
	return "list_profiles"
}

func (t *ListProfilesTool) Description() string {
	return "List all saved identity bundles for the account."
}

func (t *ListProfilesTool) Parameters() ParameterSchema {
	return instanceOnlySchema()
}

func (t *ListProfilesTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *ListProfilesTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	return runInstanceCommand(ctx, t.Store, params, func(ctx context.Context, store *browser.Store, id string) (map[string]any, error) {
		return store.ListProfiles(ctx, id)
	})
}

// DeleteProfileTool deletes a saved identity bundle.
type DeleteProfileTool struct {
	Store *browser.Store
}

func (t *DeleteProfileTool) Name() string {
	return "delete_profile"
}

func (t *DeleteProfileTool) Description() string {
	return "Delete a saved identity bundle."
}

func (t *DeleteProfileTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"profile_id": {
				Type:        "string",
				Description: "Identity bundle ID to delete",
			},
		},
		Required: []string{"instance_id", "profile_id"},
	}
}

func (t *DeleteProfileTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *DeleteProfileTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	profileID, err := requireString(params, "profile_id")
	if err != nil {
		return toolError(err), nil
	}
	result, err := store.DeleteProfile(ctx, instanceID, profileID)
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}
