package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/veilhq/veil/pkg/browser"
)

// ClickElementTool clicks an element by CSS selector.
type ClickElementTool struct {
	Store *browser.Store
}

func (t *ClickElementTool) Name() string {
	return "click_element"
}

func (t *ClickElementTool) Description() string {
	return "Click the first element matching a CSS selector."
}

func (t *ClickElementTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"selector": {
				Type:        "string",
				Description: "CSS selector of the element to click",
			},
		},
		Required: []string{"instance_id", "selector"},
	}
}

func (t *ClickElementTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *ClickElementTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	selector, err := requireString(params, "selector")
	if err != nil {
		return toolError(err), nil
	}
	result, err := store.Click(ctx, instanceID, selector)
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}

// TypeTextTool types into an input field.
type TypeTextTool struct {
	Store *browser.Store
}

func (t *TypeTextTool) Name() string {
	return "type_text"
}

func (t *TypeTextTool) Description() string {
	return "Type text into an input field. Uses human-paced keystrokes by default to avoid bot detection."
}

func (t *TypeTextTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"selector": {
				Type:        "string",
				Description: "CSS selector of the input",
			},
			"text": {
				Type:        "string",
				Description: "Text to type",
			},
			"human_like": {
				Type:        "boolean",
				Description: "Type with human-paced delays",
				Default:     true,
			},
		},
		Required: []string{"instance_id", "selector", "text"},
	}
}

func (t *TypeTextTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *TypeTextTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	selector, err := requireString(params, "selector")
	if err != nil {
		return toolError(err), nil
	}
	text := parseString(params, "text")
	if text == "" {
		return toolError(fmt.Errorf("text is required")), nil
	}
	result, err := store.TypeText(ctx, instanceID, selector, text, parseBool(params, "human_like", true))
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}

// PasteTextTool inserts text instantly, without keystroke simulation.
type PasteTextTool struct {
	Store *browser.Store
}

func (t *PasteTextTool) Name() string {
	return "paste_text"
}

func (t *PasteTextTool) Description() string {
	return "Insert text into an input field instantly, without simulated keystrokes. Useful for long values."
}

func (t *PasteTextTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"selector": {
				Type:        "string",
				Description: "CSS selector of the input",
			},
			"text": {
				Type:        "string",
				Description: "Text to insert",
			},
		},
		Required: []string{"instance_id", "selector", "text"},
	}
}

func (t *PasteTextTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *PasteTextTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	selector, err := requireString(params, "selector")
	if err != nil {
		return toolError(err), nil
	}
	text := parseString(params, "text")
	if text == "" {
		return toolError(fmt.Errorf("text is required")), nil
	}
	result, err := store.TypeText(ctx, instanceID, selector, text, false)
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}

// PressKeyTool presses a keyboard key.
type PressKeyTool struct {
	Store *browser.Store
}

func (t *PressKeyTool) Name() string {
	return "press_key"
}

func (t *PressKeyTool) Description() string {
	return "Press a keyboard key (Enter, Tab, Escape, ArrowDown, ...)."
}

func (t *PressKeyTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"key": {
				Type:        "string",
				Description: "Key name to press",
			},
		},
		Required: []string{"instance_id", "key"},
	}
}

func (t *PressKeyTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *PressKeyTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	key, err := requireString(params, "key")
	if err != nil {
		return toolError(err), nil
	}
	result, err := store.PressKey(ctx, instanceID, key)
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}

// SelectOptionTool selects a dropdown option by value, text, or index.
type SelectOptionTool struct {
	Store *browser.Store
}

func (t *SelectOptionTool) Name() string {
	return "select_option"
}

func (t *SelectOptionTool) Description() string {
	return "Select a dropdown option by value attribute, visible text, or zero-based index. Provide exactly one of value, text, or index."
}

func (t *SelectOptionTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"selector": {
				Type:        "string",
				Description: "CSS selector of the select element",
			},
			"value": {
				Type:        "string",
				Description: "Option value attribute to select",
			},
			"text": {
				Type:        "string",
				Description: "Option visible text to select",
			},
			"index": {
				Type:        "integer",
				Description: "Zero-based option index to select",
			},
		},
		Required: []string{"instance_id", "selector"},
	}
}

func (t *SelectOptionTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *SelectOptionTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	selector, err := requireString(params, "selector")
	if err != nil {
		return toolError(err), nil
	}

	var result map[string]any
	switch {
	case parseString(params, "value") != "":
		result, err = store.SelectByValue(ctx, instanceID, selector, parseString(params, "value"))
	case parseString(params, "text") != "":
		result, err = store.SelectByText(ctx, instanceID, selector, parseString(params, "text"))
	default:
		if _, ok := params["index"]; !ok {
			return toolError(fmt.Errorf("provide one of: value, text, or index")), nil
		}
		result, err = store.SelectByIndex(ctx, instanceID, selector, parseInt(params, "index", 0))
	}
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}

// WaitForElementTool waits for a selector to appear.
type WaitForElementTool struct {
	Store *browser.Store
}

func (t *WaitForElementTool) Name() string {
	return "wait_for_element"
}

func (t *WaitForElementTool) Description() string {
	return "Wait until an element matching a CSS selector appears on the page."
}

func (t *WaitForElementTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"selector": {
				Type:        "string",
				Description: "CSS selector to wait for",
			},
			"timeout_ms": {
				Type:        "integer",
				Description: "Maximum wait in milliseconds",
				Default:     10000,
			},
		},
		Required: []string{"instance_id", "selector"},
	}
}

func (t *WaitForElementTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *WaitForElementTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	selector, err := requireString(params, "selector")
	if err != nil {
		return toolError(err), nil
	}
	result, err := store.WaitForElement(ctx, instanceID, selector, parseInt(params, "timeout_ms", 10000))
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}

// ScrollPageTool scrolls the page in a named direction.
type ScrollPageTool struct {
	Store *browser.Store
}

func (t *ScrollPageTool) Name() string {
	return "scroll_page"
}

func (t *ScrollPageTool) Description() string {
	return "Scroll the page by a pixel amount in a direction, or jump to the top or bottom."
}

func (t *ScrollPageTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"direction": {
				Type:        "string",
				Description: "Scroll direction",
				Enum:        []string{"down", "up", "left", "right", "top", "bottom"},
				Default:     "down",
			},
			"amount": {
				Type:        "integer",
				Description: "Pixels to scroll",
				Default:     500,
			},
		},
		Required: []string{"instance_id"},
	}
}

func (t *ScrollPageTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *ScrollPageTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}

	direction := strings.ToLower(strings.TrimSpace(parseString(params, "direction")))
	if direction == "" {
		direction = "down"
	}
	amount := parseInt(params, "amount", 500)

	var result map[string]any
	switch direction {
	case "down":
		result, err = store.Scroll(ctx, instanceID, 0, amount)
	case "up":
		result, err = store.Scroll(ctx, instanceID, 0, -amount)
	case "right":
		result, err = store.Scroll(ctx, instanceID, amount, 0)
	case "left":
		result, err = store.Scroll(ctx, instanceID, -amount, 0)
	case "top":
		result, err = store.ScrollToTop(ctx, instanceID)
	case "bottom":
		result, err = store.ScrollToBottom(ctx, instanceID)
	default:
		return toolError(fmt.Errorf("unknown scroll direction: %s", direction)), nil
	}
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}
