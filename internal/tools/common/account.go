package common

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/workspace-mcp/workspace-mcp/internal/auth"
	"github.com/workspace-mcp/workspace-mcp/internal/google"
)

// AccountFromRequest determines which Google account a tool call should
// act on.
//
// Priority order:
//  1. Resolved identity from the auth middleware (framework token,
//     bearer token, stdio session or MCP session binding)
//  2. Explicit "user_google_email" argument in the request
//  3. "default"
func AccountFromRequest(ctx context.Context, request mcp.CallToolRequest) string {
	if id, ok := auth.IdentityFromContext(ctx); ok && id.Email != "" {
		return id.Email
	}
	if email := request.GetString("user_google_email", ""); email != "" {
		return email
	}
	return google.DefaultAccount
}
