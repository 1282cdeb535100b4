package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/veilhq/veil/pkg/browser"
)

func resolveStore(store *browser.Store) (*browser.Store, error) {
	if store == nil {
		return nil, fmt.Errorf("browser store not configured")
	}
	return store, nil
}

func toolError(err error) *Result {
	return &Result{
		Success: false,
		Error:   err.Error(),
	}
}

func parseString(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	if val, ok := params[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

func requireString(params map[string]any, key string) (string, error) {
	val := strings.TrimSpace(parseString(params, key))
	if val == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return val, nil
}

func parseInt(params map[string]any, key string, defaultVal int) int {
	if params == nil {
		return defaultVal
	}
	return parseIntValue(params[key], defaultVal)
}

func parseIntValue(value any, defaultVal int) int {
	switch v := value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return defaultVal
		}
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return defaultVal
		}
		return i
	default:
		return defaultVal
	}
}

func parseBool(params map[string]any, key string, defaultVal bool) bool {
	if params == nil {
		return defaultVal
	}
	switch v := params[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func parseStringMap(params map[string]any, key string) map[string]string {
	if params == nil {
		return nil
	}
	value, ok := params[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(value))
	for k, v := range value {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// mergeSuccess folds a remote response into a success result.
func mergeSuccess(data map[string]any) *Result {
	merged := map[string]any{}
	for k, v := range data {
		merged[k] = v
	}
	return &Result{Success: true, Data: merged}
}
