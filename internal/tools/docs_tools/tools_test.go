package docs_tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/docs"
	"github.com/workspace-mcp/workspace-mcp/internal/server"
)

func TestRegisterDocsTools(t *testing.T) {
	sc := server.NewServerContext(context.Background(), slog.Default())
	t.Cleanup(func() { _ = sc.Shutdown() })

	for _, readOnly := range []bool{false, true} {
		s := mcpserver.NewMCPServer("test", "0.0.1")
		if err := RegisterDocsTools(s, sc, readOnly); err != nil {
			t.Fatalf("RegisterDocsTools(readOnly=%v) error = %v", readOnly, err)
		}
	}
}

// The tool accepts operations as a JSON string; make sure the wire
// shape decodes into the operation struct the builders expect.
func TestOperationsJSONShape(t *testing.T) {
	raw := `[
		{"type": "insert_text", "index": 1, "text": "Hello"},
		{"type": "format_text", "startIndex": 1, "endIndex": 6, "style": {"bold": true, "fontSize": 14}},
		{"type": "find_replace", "findText": "Hello", "replaceText": "Goodbye", "matchCase": true}
	]`

	var operations []*docs.Operation
	if err := json.Unmarshal([]byte(raw), &operations); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(operations) != 3 {
		t.Fatalf("got %d operations, want 3", len(operations))
	}
	if operations[0].Type != docs.OpInsertText || operations[0].Index != 1 {
		t.Errorf("unexpected first operation: %+v", operations[0])
	}
	style := operations[1].Style
	if style == nil || style.Bold == nil || !*style.Bold || style.FontSize != 14 {
		t.Errorf("unexpected style: %+v", style)
	}
	if !operations[2].MatchCase {
		t.Error("matchCase should decode to true")
	}

	// And the decoded operations must be buildable.
	requests, err := docs.BuildRequests(operations)
	if err != nil {
		t.Fatalf("BuildRequests: %v", err)
	}
	if len(requests) != 3 {
		t.Errorf("got %d requests, want 3", len(requests))
	}
}
