package common

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/workspace-mcp/workspace-mcp/internal/auth"
)

func requestWithArgs(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestAccountFromRequest(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		ctx      context.Context
		args     map[string]any
		expected string
	}{
		{
			name:     "no identity and no argument returns default",
			ctx:      ctx,
			args:     map[string]any{},
			expected: "default",
		},
		{
			name:     "nil args returns default",
			ctx:      ctx,
			args:     nil,
			expected: "default",
		},
		{
			name: "explicit user_google_email argument",
			ctx:  ctx,
			args: map[string]any{
				"user_google_email": "work@example.com",
			},
			expected: "work@example.com",
		},
		{
			name: "empty argument returns default",
			ctx:  ctx,
			args: map[string]any{
				"user_google_email": "",
			},
			expected: "default",
		},
		{
			name: "resolved identity wins over argument",
			ctx: auth.WithIdentity(ctx, &auth.Identity{
				Email:  "resolved@example.com",
				Method: auth.MethodSessionBinding,
			}),
			args: map[string]any{
				"user_google_email": "arg@example.com",
			},
			expected: "resolved@example.com",
		},
		{
			name: "identity with empty email falls through to argument",
			ctx:  auth.WithIdentity(ctx, &auth.Identity{}),
			args: map[string]any{
				"user_google_email": "arg@example.com",
			},
			expected: "arg@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AccountFromRequest(tt.ctx, requestWithArgs(tt.args))
			if got != tt.expected {
				t.Errorf("AccountFromRequest() = %q, want %q", got, tt.expected)
			}
		})
	}
}
