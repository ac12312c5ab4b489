package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/auth"
	"github.com/workspace-mcp/workspace-mcp/internal/server"
)

// RegisterUserResources registers resources describing the current
// authenticated user.
func RegisterUserResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	profileResource := mcp.NewResource(
		"user://profile",
		"Current User Profile",
		mcp.WithResourceDescription("The identity resolved for the current request and how it was authenticated"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleUserProfile(ctx, request, sc)
	})

	return nil
}

// handleUserProfile reports the resolved identity. Resources are not
// routed through the tool middleware, so resolution state may be absent;
// the profile then falls back to session-store knowledge.
func handleUserProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	profile := map[string]any{
		"authenticated": false,
	}

	if id, ok := auth.IdentityFromContext(ctx); ok && id.Email != "" {
		profile["authenticated"] = true
		profile["email"] = id.Email
		profile["method"] = string(id.Method)
		if id.Token != nil {
			profile["clientId"] = id.Token.ClientID
			profile["scopes"] = id.Token.Scopes
			if !id.Token.ExpiresAt.IsZero() {
				profile["expiresAt"] = id.Token.ExpiresAt
			}
		}
	} else if sessions := sc.Sessions(); sessions != nil {
		if email, ok := sessions.SingleActiveUser(); ok {
			profile["authenticated"] = true
			profile["email"] = email
			profile["method"] = "stdio_single_session"
		} else if active := sessions.ActiveUsers(); len(active) > 0 {
			profile["activeUsers"] = active
		}
	}

	jsonData, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
