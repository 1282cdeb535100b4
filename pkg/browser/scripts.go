package browser

import (
	"context"
	"encoding/json"
	"fmt"
)

// Remote-side script payloads. These execute entirely in the cloud
// browser page context; locally they are opaque strings parameterized by
// JSON-escaped selector and value arguments.

const (
	historyBackScript    = "history.back()"
	historyForwardScript = "history.forward()"
	reloadScript         = "location.reload()"
	scrollTopScript      = "window.scrollTo(0, 0)"
	scrollBottomScript   = "window.scrollTo(0, document.body.scrollHeight)"
)

// jsString renders a Go string as a JavaScript string literal. JSON
// escaping is sufficient for embedding untrusted selectors and values.
func jsString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

func selectByValueScript(selector, value string) string {
	return fmt.Sprintf(`(() => {
    const el = document.querySelector(%s);
    if (!el) return { error: 'Element not found' };
    el.value = %s;
    el.dispatchEvent(new Event('change', { bubbles: true }));
    return { selected: el.value };
})()`, jsString(selector), jsString(value))
}

func selectByTextScript(selector, text string) string {
	return fmt.Sprintf(`(() => {
    const el = document.querySelector(%s);
    if (!el) return { error: 'Element not found' };
    const opt = Array.from(el.options).find(o => o.text === %s);
    if (!opt) return { error: 'Option not found' };
    el.value = opt.value;
    el.dispatchEvent(new Event('change', { bubbles: true }));
    return { selected: opt.value, text: opt.text };
})()`, jsString(selector), jsString(text))
}

func selectByIndexScript(selector string, index int) string {
	return fmt.Sprintf(`(() => {
    const el = document.querySelector(%s);
    if (!el) return { error: 'Element not found' };
    if (%d >= el.options.length) return { error: 'Index out of range' };
    el.selectedIndex = %d;
    el.dispatchEvent(new Event('change', { bubbles: true }));
    return { selected: el.value, index: %d };
})()`, jsString(selector), index, index, index)
}

func queryElementsScript(selector string, limit int) string {
	return fmt.Sprintf(`(() => {
    const els = document.querySelectorAll(%s);
    const results = [];
    const max = Math.min(els.length, %d);
    for (let i = 0; i < max; i++) {
        const el = els[i];
        const rect = el.getBoundingClientRect();
        const attrs = {};
        for (const a of el.attributes) { attrs[a.name] = a.value; }
        results.push({
            index: i,
            tag: el.tagName.toLowerCase(),
            text: (el.textContent || '').trim().substring(0, 200),
            attributes: attrs,
            visible: rect.width > 0 && rect.height > 0,
            bounding_box: { x: rect.x, y: rect.y, width: rect.width, height: rect.height },
        });
    }
    return { total: els.length, returned: results.length, elements: results };
})()`, jsString(selector), limit)
}

func elementStateScript(selector string) string {
	return fmt.Sprintf(`(() => {
    const el = document.querySelector(%s);
    if (!el) return { error: 'Element not found' };
    const rect = el.getBoundingClientRect();
    const cs = window.getComputedStyle(el);
    const attrs = {};
    for (const a of el.attributes) { attrs[a.name] = a.value; }
    return {
        tag: el.tagName.toLowerCase(),
        text: (el.textContent || '').trim().substring(0, 500),
        inner_html: el.innerHTML.substring(0, 1000),
        attributes: attrs,
        value: el.value !== undefined ? el.value : null,
        checked: el.checked !== undefined ? el.checked : null,
        disabled: el.disabled || false,
        visible: rect.width > 0 && rect.height > 0,
        bounding_box: { x: rect.x, y: rect.y, width: rect.width, height: rect.height },
        computed_style: {
            display: cs.display,
            visibility: cs.visibility,
            opacity: cs.opacity,
            color: cs.color,
            background: cs.background,
            font_size: cs.fontSize,
            position: cs.position,
        },
    };
})()`, jsString(selector))
}

// GoBack navigates back in the session history.
func (s *Store) GoBack(ctx context.Context, instanceID string) (map[string]any, error) {
	return s.Evaluate(ctx, instanceID, historyBackScript)
}

// GoForward navigates forward in the session history.
func (s *Store) GoForward(ctx context.Context, instanceID string) (map[string]any, error) {
	return s.Evaluate(ctx, instanceID, historyForwardScript)
}

// Reload reloads the current page.
func (s *Store) Reload(ctx context.Context, instanceID string) (map[string]any, error) {
	return s.Evaluate(ctx, instanceID, reloadScript)
}

// ScrollToTop scrolls the page to the top.
func (s *Store) ScrollToTop(ctx context.Context, instanceID string) (map[string]any, error) {
	return s.Evaluate(ctx, instanceID, scrollTopScript)
}

// ScrollToBottom scrolls the page to the bottom.
func (s *Store) ScrollToBottom(ctx context.Context, instanceID string) (map[string]any, error) {
	return s.Evaluate(ctx, instanceID, scrollBottomScript)
}

// SelectByValue selects a dropdown option by its value attribute.
func (s *Store) SelectByValue(ctx context.Context, instanceID, selector, value string) (map[string]any, error) {
	return s.Evaluate(ctx, instanceID, selectByValueScript(selector, value))
}

// SelectByText selects a dropdown option by its visible text.
func (s *Store) SelectByText(ctx context.Context, instanceID, selector, text string) (map[string]any, error) {
	return s.Evaluate(ctx, instanceID, selectByTextScript(selector, text))
}

// SelectByIndex selects a dropdown option by zero-based index.
func (s *Store) SelectByIndex(ctx context.Context, instanceID, selector string, index int) (map[string]any, error) {
	return s.Evaluate(ctx, instanceID, selectByIndexScript(selector, index))
}

// QueryElements returns info for up to limit elements matching a selector.
func (s *Store) QueryElements(ctx context.Context, instanceID, selector string, limit int) (map[string]any, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.Evaluate(ctx, instanceID, queryElementsScript(selector, limit))
}

// ElementState returns the complete state of the first matching element.
func (s *Store) ElementState(ctx context.Context, instanceID, selector string) (map[string]any, error) {
	return s.Evaluate(ctx, instanceID, elementStateScript(selector))
}
