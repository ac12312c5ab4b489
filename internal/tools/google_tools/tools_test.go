package google_tools

import (
	"context"
	"log/slog"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/server"
)

func TestRegisterGoogleTools(t *testing.T) {
	sc := server.NewServerContext(context.Background(), slog.Default())
	t.Cleanup(func() { _ = sc.Shutdown() })

	s := mcpserver.NewMCPServer("test", "0.0.1")
	if err := RegisterGoogleTools(s, sc); err != nil {
		t.Fatalf("RegisterGoogleTools() error = %v", err)
	}
}
