package gmail_tools

import (
	"context"
	"log/slog"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/server"
)

func newTestContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc := server.NewServerContext(context.Background(), slog.Default())
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestRegisterGmailTools(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "0.0.1")
	if err := RegisterGmailTools(s, newTestContext(t), false); err != nil {
		t.Fatalf("RegisterGmailTools() error = %v", err)
	}
}

func TestRegisterGmailToolsReadOnly(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "0.0.1")
	if err := RegisterGmailTools(s, newTestContext(t), true); err != nil {
		t.Fatalf("RegisterGmailTools(readOnly) error = %v", err)
	}
}

func TestAddressList(t *testing.T) {
	args := map[string]interface{}{
		"cc": []interface{}{"a@example.com", "b@example.com"},
	}

	got, err := addressList(args, "cc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "a@example.com" {
		t.Errorf("addressList() = %v", got)
	}

	// Absent key is not an error, just empty.
	got, err = addressList(args, "bcc")
	if err != nil {
		t.Fatalf("unexpected error for missing key: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing key, got %v", got)
	}
}
