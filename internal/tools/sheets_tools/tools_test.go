package sheets_tools

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	sheets_v4 "google.golang.org/api/sheets/v4"

	"github.com/workspace-mcp/workspace-mcp/internal/server"
)

func TestRegisterSheetsTools(t *testing.T) {
	sc := server.NewServerContext(context.Background(), slog.Default())
	t.Cleanup(func() { _ = sc.Shutdown() })

	for _, readOnly := range []bool{false, true} {
		s := mcpserver.NewMCPServer("test", "0.0.1")
		if err := RegisterSheetsTools(s, sc, readOnly); err != nil {
			t.Fatalf("RegisterSheetsTools(readOnly=%v) error = %v", readOnly, err)
		}
	}
}

func requestWithArgs(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func testSheets() []*sheets_v4.Sheet {
	return []*sheets_v4.Sheet{
		{Properties: &sheets_v4.SheetProperties{SheetId: 7, Title: "Data"}},
	}
}

func TestRuleFromRequestBoolean(t *testing.T) {
	req := requestWithArgs(map[string]any{
		"range":           "Data!B2:B100",
		"conditionType":   "NUMBER_GREATER",
		"conditionValues": "100",
		"backgroundColor": "#ffcccc",
	})

	rule, err := ruleFromRequest(req, testSheets())
	if err != nil {
		t.Fatalf("ruleFromRequest() error = %v", err)
	}
	if rule.BooleanRule == nil {
		t.Fatal("expected a boolean rule")
	}
	if rule.GradientRule != nil {
		t.Error("boolean rule should not carry a gradient rule")
	}
	if got := rule.BooleanRule.Condition.Type; got != "NUMBER_GREATER" {
		t.Errorf("condition type = %q", got)
	}
	if len(rule.Ranges) != 1 || rule.Ranges[0].SheetId != 7 {
		t.Errorf("unexpected ranges: %+v", rule.Ranges)
	}
}

func TestRuleFromRequestGradient(t *testing.T) {
	req := requestWithArgs(map[string]any{
		"range":    "Data!C1:C50",
		"minColor": "#ffffff",
		"maxColor": "#00ff00",
	})

	rule, err := ruleFromRequest(req, testSheets())
	if err != nil {
		t.Fatalf("ruleFromRequest() error = %v", err)
	}
	if rule.GradientRule == nil {
		t.Fatal("expected a gradient rule")
	}
	if rule.GradientRule.Midpoint != nil {
		t.Error("midpoint should be absent when midColor is not given")
	}
}

func TestRuleFromRequestErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
	}{
		{
			name:    "no rule kind",
			args:    map[string]any{"range": "Data!A1:A5"},
			wantErr: "either conditionType",
		},
		{
			name: "both rule kinds",
			args: map[string]any{
				"range":         "Data!A1:A5",
				"conditionType": "NOT_BLANK",
				"minColor":      "#ffffff",
			},
			wantErr: "mutually exclusive",
		},
		{
			name: "bad range",
			args: map[string]any{
				"range":         "Nope!A1:A5",
				"conditionType": "NOT_BLANK",
			},
			wantErr: "invalid range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ruleFromRequest(requestWithArgs(tt.args), testSheets())
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestBuildCellFormat(t *testing.T) {
	req := requestWithArgs(map[string]any{
		"backgroundColor": "#ff0000",
		"bold":            true,
		"fontSize":        12.0,
	})

	format, fields, err := buildCellFormat(req)
	if err != nil {
		t.Fatalf("buildCellFormat() error = %v", err)
	}
	if format.BackgroundColor == nil {
		t.Error("expected background color to be set")
	}
	if format.TextFormat == nil || !format.TextFormat.Bold {
		t.Error("expected bold text format")
	}
	if format.TextFormat.FontSize != 12 {
		t.Errorf("font size = %d, want 12", format.TextFormat.FontSize)
	}

	joined := strings.Join(fields, ",")
	for _, want := range []string{"backgroundColor", "textFormat.bold", "textFormat.fontSize"} {
		if !strings.Contains(joined, want) {
			t.Errorf("fields %q missing %q", joined, want)
		}
	}
}

func TestBuildCellFormatInvalidColor(t *testing.T) {
	req := requestWithArgs(map[string]any{"textColor": "red"})
	if _, _, err := buildCellFormat(req); err == nil {
		t.Error("expected an error for a non-hex color")
	}
}

func TestBuildCellFormatEmpty(t *testing.T) {
	_, fields, err := buildCellFormat(requestWithArgs(map[string]any{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) != 0 {
		t.Errorf("expected no fields, got %v", fields)
	}
}
