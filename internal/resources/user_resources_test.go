package resources

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/auth"
	"github.com/workspace-mcp/workspace-mcp/internal/server"
	"github.com/workspace-mcp/workspace-mcp/internal/session"
)

func profileRequest() mcp.ReadResourceRequest {
	var req mcp.ReadResourceRequest
	req.Params.URI = "user://profile"
	return req
}

func decodeProfile(t *testing.T, contents []mcp.ResourceContents) map[string]any {
	t.Helper()
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	text, ok := contents[0].(*mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected contents type %T", contents[0])
	}
	var profile map[string]any
	if err := json.Unmarshal([]byte(text.Text), &profile); err != nil {
		t.Fatalf("profile is not valid JSON: %v", err)
	}
	return profile
}

func TestRegisterUserResources(t *testing.T) {
	sc := server.NewServerContext(context.Background(), slog.Default())
	t.Cleanup(func() { _ = sc.Shutdown() })

	s := mcpserver.NewMCPServer("test", "0.0.1")
	if err := RegisterUserResources(s, sc); err != nil {
		t.Fatalf("RegisterUserResources() error = %v", err)
	}
}

func TestUserProfileResolvedIdentity(t *testing.T) {
	sc := server.NewServerContext(context.Background(), slog.Default())
	t.Cleanup(func() { _ = sc.Shutdown() })

	ctx := auth.WithIdentity(context.Background(), &auth.Identity{
		Email:  "user@example.com",
		Method: auth.MethodBearerOpaque,
	})

	contents, err := handleUserProfile(ctx, profileRequest(), sc)
	if err != nil {
		t.Fatalf("handleUserProfile() error = %v", err)
	}
	profile := decodeProfile(t, contents)

	if profile["authenticated"] != true {
		t.Error("expected authenticated = true")
	}
	if profile["email"] != "user@example.com" {
		t.Errorf("email = %v", profile["email"])
	}
	if profile["method"] != "bearer_opaque" {
		t.Errorf("method = %v", profile["method"])
	}
}

func TestUserProfileSessionFallback(t *testing.T) {
	sc := server.NewServerContext(context.Background(), slog.Default())
	t.Cleanup(func() { _ = sc.Shutdown() })

	sessions := session.NewStore()
	t.Cleanup(sessions.Stop)
	sessions.RegisterCredential("solo@example.com", time.Time{})
	sc.SetSessions(sessions)

	contents, err := handleUserProfile(context.Background(), profileRequest(), sc)
	if err != nil {
		t.Fatalf("handleUserProfile() error = %v", err)
	}
	profile := decodeProfile(t, contents)

	if profile["authenticated"] != true {
		t.Error("expected authenticated = true via single-user fallback")
	}
	if profile["email"] != "solo@example.com" {
		t.Errorf("email = %v", profile["email"])
	}
}

func TestUserProfileUnauthenticated(t *testing.T) {
	sc := server.NewServerContext(context.Background(), slog.Default())
	t.Cleanup(func() { _ = sc.Shutdown() })

	contents, err := handleUserProfile(context.Background(), profileRequest(), sc)
	if err != nil {
		t.Fatalf("handleUserProfile() error = %v", err)
	}
	profile := decodeProfile(t, contents)

	if profile["authenticated"] != false {
		t.Error("expected authenticated = false")
	}
	if _, ok := profile["email"]; ok {
		t.Error("email should be absent when unauthenticated")
	}
}
