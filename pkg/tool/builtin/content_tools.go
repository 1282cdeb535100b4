package builtin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/veilhq/veil/pkg/browser"
)

// GetPageContentTool returns the full page HTML.
type GetPageContentTool struct {
	Store *browser.Store
}

func (t *GetPageContentTool) Name() string {
	return "get_page_content"
}

func (t *GetPageContentTool) Description() string {
	return "Get the full HTML content of the current page."
}

func (t *GetPageContentTool) Parameters() ParameterSchema {
	return instanceOnlySchema()
}

func (t *GetPageContentTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *GetPageContentTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	return runInstanceCommand(ctx, t.Store, params, func(ctx context.Context, store *browser.Store, id string) (map[string]any, error) {
		return store.Content(ctx, id)
	})
}

// GetPageTextTool returns visible text for a selector.
type GetPageTextTool struct {
	Store *browser.Store
}

func (t *GetPageTextTool) Name() string {
	return "get_page_text"
}

func (t *GetPageTextTool) Description() string {
	return "Get the visible text of the page, or of a specific element."
}

func (t *GetPageTextTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"selector": {
				Type:        "string",
				Description: "CSS selector to extract text from",
				Default:     "body",
			},
		},
		Required: []string{"instance_id"},
	}
}

func (t *GetPageTextTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *GetPageTextTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	result, err := store.Text(ctx, instanceID, parseString(params, "selector"))
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}

// TakeScreenshotTool captures a screenshot.
type TakeScreenshotTool struct {
	Store *browser.Store
}

func (t *TakeScreenshotTool) Name() string {
	return "take_screenshot"
}

func (t *TakeScreenshotTool) Description() string {
	return "Capture a screenshot of the current viewport, or the full page."
}

func (t *TakeScreenshotTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"full_page": {
				Type:        "boolean",
				Description: "Capture the full page instead of the viewport",
				Default:     false,
			},
		},
		Required: []string{"instance_id"},
	}
}

func (t *TakeScreenshotTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *TakeScreenshotTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	result, err := store.Screenshot(ctx, instanceID, parseBool(params, "full_page", false))
	if err != nil {
		return toolError(err), nil
	}

	data := map[string]any{"instance_id": instanceID}
	if b64 := screenshotBase64(result); b64 != "" {
		data["screenshot_base64"] = b64
		data["size_bytes"] = len(b64) * 3 / 4
	} else {
		for k, v := range result {
			data[k] = v
		}
	}
	return &Result{Success: true, Data: data}, nil
}

// screenshotBase64 digs the image payload out of the remote response,
// which has used several key names across API versions.
func screenshotBase64(result map[string]any) string {
	for _, key := range []string{"screenshot", "data", "base64"} {
		if s, ok := result[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// ExecuteScriptTool runs JavaScript in the page context.
type ExecuteScriptTool struct {
	Store *browser.Store
}

func (t *ExecuteScriptTool) Name() string {
	return "execute_script"
}

func (t *ExecuteScriptTool) Description() string {
	return "Execute JavaScript in the page context and return its result."
}

func (t *ExecuteScriptTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"script": {
				Type:        "string",
				Description: "JavaScript to execute",
			},
		},
		Required: []string{"instance_id", "script"},
	}
}

func (t *ExecuteScriptTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *ExecuteScriptTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	script := parseString(params, "script")
	if strings.TrimSpace(script) == "" {
		return toolError(fmt.Errorf("script is required")), nil
	}
	result, err := store.Evaluate(ctx, instanceID, script)
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}

// QueryElementsTool inspects elements matching a selector.
type QueryElementsTool struct {
	Store *browser.Store
}

func (t *QueryElementsTool) Name() string {
	return "query_elements"
}

func (t *QueryElementsTool) Description() string {
	return "Query elements matching a CSS selector and return their tag, text, attributes, visibility, and bounding box."
}

func (t *QueryElementsTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"selector": {
				Type:        "string",
				Description: "CSS selector to query",
			},
			"limit": {
				Type:        "integer",
				Description: "Maximum elements to return",
				Default:     20,
			},
		},
		Required: []string{"instance_id", "selector"},
	}
}

func (t *QueryElementsTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *QueryElementsTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
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
	result, err := store.QueryElements(ctx, instanceID, selector, parseInt(params, "limit", 20))
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}

// GetElementStateTool inspects a single element in detail.
type GetElementStateTool struct {
	Store *browser.Store
}

func (t *GetElementStateTool) Name() string {
	return "get_element_state"
}

func (t *GetElementStateTool) Description() string {
	return "Get the complete state of the first element matching a CSS selector, including computed style."
}

func (t *GetElementStateTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"selector": {
				Type:        "string",
				Description: "CSS selector of the element",
			},
		},
		Required: []string{"instance_id", "selector"},
	}
}

func (t *GetElementStateTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *GetElementStateTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
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
	result, err := store.ElementState(ctx, instanceID, selector)
	if err != nil {
		return toolError(err), nil
	}
	return mergeSuccess(result), nil
}

// GetPageLinksTool extracts links from the current page HTML.
type GetPageLinksTool struct {
	Store *browser.Store
}

func (t *GetPageLinksTool) Name() string {
	return "get_page_links"
}

func (t *GetPageLinksTool) Description() string {
	return "Extract links from the current page, resolved against the page URL."
}

func (t *GetPageLinksTool) Parameters() ParameterSchema {
	return ParameterSchema{
		Type: "object",
		Properties: map[string]PropertySchema{
			"instance_id": {
				Type:        "string",
				Description: "Browser instance ID",
			},
			"limit": {
				Type:        "integer",
				Description: "Maximum links to return",
				Default:     50,
			},
		},
		Required: []string{"instance_id"},
	}
}

func (t *GetPageLinksTool) Execute(params map[string]any) (*Result, error) {
	return t.ExecuteWithContext(context.Background(), params)
}

func (t *GetPageLinksTool) ExecuteWithContext(ctx context.Context, params map[string]any) (*Result, error) {
	store, err := resolveStore(t.Store)
	if err != nil {
		return toolError(err), nil
	}
	instanceID, err := requireString(params, "instance_id")
	if err != nil {
		return toolError(err), nil
	}
	limit := parseInt(params, "limit", 50)

	content, err := store.Content(ctx, instanceID)
	if err != nil {
		return toolError(err), nil
	}
	html, _ := content["content"].(string)
	if html == "" {
		html, _ = content["html"].(string)
	}
	if html == "" {
		return toolError(fmt.Errorf("page content unavailable")), nil
	}

	var base *url.URL
	if inst, ok := store.Get(instanceID); ok && inst.CurrentURL != "" {
		base, _ = url.Parse(inst.CurrentURL)
	}

	links, err := collectLinks(html, base, limit)
	if err != nil {
		return toolError(err), nil
	}
	return &Result{
		Success: true,
		Data: map[string]any{
			"instance_id": instanceID,
			"count":       len(links),
			"links":       links,
		},
	}, nil
}

func collectLinks(html string, base *url.URL, limit int) ([]map[string]any, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}

	links := make([]map[string]any, 0, limit)
	seen := make(map[string]bool)
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "#") {
			return true
		}
		if base != nil {
			if ref, err := url.Parse(href); err == nil {
				href = base.ResolveReference(ref).String()
			}
		}
		if seen[href] {
			return true
		}
		seen[href] = true
		links = append(links, map[string]any{
			"url":  href,
			"text": strings.TrimSpace(sel.Text()),
		})
		return len(links) < limit
	})
	return links, nil
}
