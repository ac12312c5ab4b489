package drive_tools

import (
	"context"
	"log/slog"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/server"
)

func TestRegisterDriveTools(t *testing.T) {
	sc := server.NewServerContext(context.Background(), slog.Default())
	t.Cleanup(func() { _ = sc.Shutdown() })

	for _, readOnly := range []bool{false, true} {
		s := mcpserver.NewMCPServer("test", "0.0.1")
		if err := RegisterDriveTools(s, sc, readOnly); err != nil {
			t.Fatalf("RegisterDriveTools(readOnly=%v) error = %v", readOnly, err)
		}
	}
}
