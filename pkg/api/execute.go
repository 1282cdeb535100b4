package api

import (
	"context"

	"github.com/veilhq/veil/pkg/tool"
	"github.com/veilhq/veil/pkg/tool/builtin"
)

type contextExecutor interface {
	ExecuteWithContext(ctx context.Context, params map[string]any) (*builtin.Result, error)
}

// executeTool prefers the context-aware entry point so request
// cancellation propagates to the remote API.
func executeTool(ctx context.Context, t tool.Tool, params map[string]any) (*builtin.Result, error) {
	if ce, ok := t.(contextExecutor); ok {
		return ce.ExecuteWithContext(ctx, params)
	}
	return t.Execute(params)
}
