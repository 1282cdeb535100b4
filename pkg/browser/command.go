package browser

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/veilhq/veil/pkg/logging"
)

// Command sends a named action to a session and returns the decoded
// response verbatim. Every higher-level operation reduces to this: one
// authenticated POST against the per-session command endpoint, with the
// body merging {action} and params. An unknown instance id fails before
// any network call. The payment_required sentinel carries no usable
// token and is likewise not addressable here.
func (s *Store) Command(ctx context.Context, instanceID, action string, params map[string]any) (map[string]any, error) {
	rec, err := s.resolve(instanceID)
	if err != nil {
		return nil, err
	}

	body := map[string]any{"action": action}
	for key, value := range params {
		body[key] = value
	}
	headers := map[string]string{"Authorization": "Bearer " + rec.sessionToken}

	metricCommands.Inc()
	data, status, err := s.doRequest(ctx, http.MethodPost, "/v1/sessions/"+rec.sessionID+"/command", body, headers)
	if err != nil {
		metricCommandFailures.Inc()
		return nil, fmt.Errorf("command %s: %w", action, err)
	}
	if status != http.StatusOK {
		metricCommandFailures.Inc()
		s.logEvent(logging.LevelError, logging.CategoryNetwork, "command_failed",
			"browser command rejected", map[string]any{
				"instance_id": instanceID,
				"action":      action,
				"status":      status,
			})
		return nil, &RemoteError{Status: status, Message: remoteMessage(data)}
	}

	s.update(instanceID, func(inst *Instance) {
		inst.LastActivity = time.Now()
	})
	return data, nil
}

// resolve returns the record for an id, rejecting absent ids and sentinel
// records that have no session id/token pair suitable for authenticated
// calls.
func (s *Store) resolve(instanceID string) (*record, error) {
	s.mu.Lock()
	rec, ok := s.records[instanceID]
	s.mu.Unlock()
	if !ok || rec.sessionID == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstance, instanceID)
	}
	return rec, nil
}

// Navigate loads a URL and refreshes the cached URL/title on success.
// This is the only operation that refreshes them; navigation triggered by
// clicks or scripts leaves the cache stale.
func (s *Store) Navigate(ctx context.Context, instanceID, url, waitUntil string) (map[string]any, error) {
	if waitUntil == "" {
		waitUntil = "domcontentloaded"
	}
	result, err := s.Command(ctx, instanceID, "navigate", map[string]any{
		"url":        url,
		"wait_until": waitUntil,
	})
	if err != nil {
		return nil, err
	}
	s.update(instanceID, func(inst *Instance) {
		inst.CurrentURL = url
		if resolved, ok := result["url"].(string); ok && resolved != "" {
			inst.CurrentURL = resolved
		}
		inst.Title, _ = result["title"].(string)
		inst.State = StateReady
		inst.LastActivity = time.Now()
	})
	return result, nil
}

// Click clicks the first element matching a CSS selector.
func (s *Store) Click(ctx context.Context, instanceID, selector string) (map[string]any, error) {
	return s.Command(ctx, instanceID, "click", map[string]any{"selector": selector})
}

// TypeText types into an input. humanLike selects the slow, human-paced
// variant on the remote side.
func (s *Store) TypeText(ctx context.Context, instanceID, selector, text string, humanLike bool) (map[string]any, error) {
	action := "type"
	if humanLike {
		action = "type_slow"
	}
	return s.Command(ctx, instanceID, action, map[string]any{
		"selector": selector,
		"text":     text,
	})
}

// Screenshot captures the viewport, or the full page when fullPage is set.
func (s *Store) Screenshot(ctx context.Context, instanceID string, fullPage bool) (map[string]any, error) {
	return s.Command(ctx, instanceID, "screenshot", map[string]any{"full_page": fullPage})
}

// Content returns the page HTML.
func (s *Store) Content(ctx context.Context, instanceID string) (map[string]any, error) {
	return s.Command(ctx, instanceID, "content", nil)
}

// Text returns text content for a selector, defaulting to the whole body.
func (s *Store) Text(ctx context.Context, instanceID, selector string) (map[string]any, error) {
	if selector == "" {
		selector = "body"
	}
	return s.Command(ctx, instanceID, "text", map[string]any{"selector": selector})
}

// Evaluate executes JavaScript in the remote page context.
func (s *Store) Evaluate(ctx context.Context, instanceID, script string) (map[string]any, error) {
	return s.Command(ctx, instanceID, "evaluate", map[string]any{"script": script})
}

// Cookies returns all cookies for the session.
func (s *Store) Cookies(ctx context.Context, instanceID string) (map[string]any, error) {
	return s.Command(ctx, instanceID, "cookies", nil)
}

// SetCookie sets one cookie.
func (s *Store) SetCookie(ctx context.Context, instanceID string, cookie map[string]any) (map[string]any, error) {
	return s.Command(ctx, instanceID, "set_cookie", map[string]any{"cookie": cookie})
}

// ClearCookies removes all cookies for the session.
func (s *Store) ClearCookies(ctx context.Context, instanceID string) (map[string]any, error) {
	return s.Command(ctx, instanceID, "clear_cookies", nil)
}

// LocalStorage returns all localStorage pairs for the current page.
func (s *Store) LocalStorage(ctx context.Context, instanceID string) (map[string]any, error) {
	return s.Command(ctx, instanceID, "local_storage", nil)
}

// SetLocalStorage stores key-value pairs in localStorage.
func (s *Store) SetLocalStorage(ctx context.Context, instanceID string, items map[string]string) (map[string]any, error) {
	return s.Command(ctx, instanceID, "set_local_storage", map[string]any{"items": items})
}

// WaitForElement waits until a selector matches, up to timeout millis.
func (s *Store) WaitForElement(ctx context.Context, instanceID, selector string, timeoutMs int) (map[string]any, error) {
	if timeoutMs <= 0 {
		timeoutMs = 10000
	}
	return s.Command(ctx, instanceID, "wait", map[string]any{
		"selector": selector,
		"timeout":  timeoutMs,
	})
}

// PressKey presses a keyboard key (Enter, Tab, Escape, ...).
func (s *Store) PressKey(ctx context.Context, instanceID, key string) (map[string]any, error) {
	return s.Command(ctx, instanceID, "press", map[string]any{"key": key})
}

// Scroll scrolls by pixel offsets.
func (s *Store) Scroll(ctx context.Context, instanceID string, x, y int) (map[string]any, error) {
	return s.Command(ctx, instanceID, "scroll", map[string]any{"x": x, "y": y})
}

// CurrentPageState fetches cookies and combines them with the cached
// URL/title/viewport into a snapshot.
func (s *Store) CurrentPageState(ctx context.Context, instanceID string) (*PageState, error) {
	cookieData, err := s.Cookies(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	state := &PageState{
		InstanceID: instanceID,
		ReadyState: "complete",
		Viewport:   Viewport{Width: 1920, Height: 1080},
		Timestamp:  time.Now(),
	}
	if inst, ok := s.Get(instanceID); ok {
		state.URL = inst.CurrentURL
		state.Title = inst.Title
		state.Viewport = inst.Viewport
	}
	if raw, ok := cookieData["cookies"].([]any); ok {
		cookies := make([]map[string]any, 0, len(raw))
		for _, item := range raw {
			if cookie, ok := item.(map[string]any); ok {
				cookies = append(cookies, cookie)
			}
		}
		state.Cookies = cookies
	}
	return state, nil
}
