package chat_tools

import (
	"context"
	"log/slog"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/server"
)

func TestRegisterChatTools(t *testing.T) {
	sc := server.NewServerContext(context.Background(), slog.Default())
	t.Cleanup(func() { _ = sc.Shutdown() })

	for _, readOnly := range []bool{false, true} {
		s := mcpserver.NewMCPServer("test", "0.0.1")
		if err := RegisterChatTools(s, sc, readOnly); err != nil {
			t.Fatalf("RegisterChatTools(readOnly=%v) error = %v", readOnly, err)
		}
	}
}
