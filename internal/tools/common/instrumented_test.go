package common

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/server"
)

func TestInstrumentedIsAddToolCompatible(t *testing.T) {
	sc := server.NewServerContext(context.Background(), nil)
	defer func() {
		if err := sc.Shutdown(); err != nil {
			t.Errorf("shutdown failed: %v", err)
		}
	}()

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	}

	// The wrapped handler must satisfy mcp-go's handler type so it can
	// be passed to MCPServer.AddTool directly.
	var wrapped mcpserver.ToolHandlerFunc = Instrumented("test_tool", "", "", sc, handler)

	s := mcpserver.NewMCPServer("test", "0.0.1")
	s.AddTool(mcp.NewTool("test_tool", mcp.WithDescription("a test tool")), wrapped)

	result, err := wrapped(context.Background(), requestWithArgs(nil))
	if err != nil {
		t.Fatalf("wrapped handler returned error: %v", err)
	}
	if result == nil || result.IsError {
		t.Fatalf("expected success result, got %+v", result)
	}
}

func TestInstrumentedPassesThroughHandlerError(t *testing.T) {
	sc := server.NewServerContext(context.Background(), nil)
	defer func() {
		if err := sc.Shutdown(); err != nil {
			t.Errorf("shutdown failed: %v", err)
		}
	}()

	sentinel := errors.New("client construction failed")
	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, sentinel
	}

	wrapped := Instrumented("test_tool", "gmail", "search", sc, handler)

	result, err := wrapped(context.Background(), requestWithArgs(nil))
	if !errors.Is(err, sentinel) {
		t.Errorf("expected sentinel error to pass through unchanged, got %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result on handler error, got %+v", result)
	}
}
