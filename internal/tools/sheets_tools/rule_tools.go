package sheets_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	sheets_v4 "google.golang.org/api/sheets/v4"

	"github.com/workspace-mcp/workspace-mcp/internal/server"
	"github.com/workspace-mcp/workspace-mcp/internal/sheets"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/batch"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/common"
)

// registerRuleTools registers conditional-formatting tools.
func registerRuleTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listRulesTool := mcp.NewTool("sheets_list_conditional_rules",
		mcp.WithDescription("List conditional formatting rules of a spreadsheet, per sheet"),
		accountOption(),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
	)
	s.AddTool(listRulesTool, common.Instrumented("sheets_list_conditional_rules", "sheets", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListRules(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	addRuleTool := mcp.NewTool("sheets_add_conditional_rule",
		mcp.WithDescription("Add a conditional formatting rule. Boolean rules need conditionType; gradient rules need min/max color points."),
		accountOption(),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range the rule applies to, e.g. 'Sheet1!B2:B100'"),
		),
		mcp.WithString("conditionType",
			mcp.Description("Boolean rule condition, e.g. 'NUMBER_GREATER', 'TEXT_CONTAINS', 'CUSTOM_FORMULA'"),
		),
		mcp.WithString("conditionValues",
			mcp.Description("Condition value (string) or array of values"),
		),
		mcp.WithString("backgroundColor",
			mcp.Description("Boolean rule background color as hex"),
		),
		mcp.WithString("textColor",
			mcp.Description("Boolean rule text color as hex"),
		),
		mcp.WithBoolean("bold",
			mcp.Description("Boolean rule: bold text"),
		),
		mcp.WithString("minType",
			mcp.Description("Gradient: min point type ('MIN', 'NUMBER', 'PERCENT', 'PERCENTILE')"),
		),
		mcp.WithString("minValue",
			mcp.Description("Gradient: min point value (for NUMBER/PERCENT/PERCENTILE)"),
		),
		mcp.WithString("minColor",
			mcp.Description("Gradient: min point color as hex"),
		),
		mcp.WithString("midType",
			mcp.Description("Gradient: optional mid point type"),
		),
		mcp.WithString("midValue",
			mcp.Description("Gradient: mid point value"),
		),
		mcp.WithString("midColor",
			mcp.Description("Gradient: mid point color as hex"),
		),
		mcp.WithString("maxType",
			mcp.Description("Gradient: max point type ('MAX', 'NUMBER', 'PERCENT', 'PERCENTILE')"),
		),
		mcp.WithString("maxValue",
			mcp.Description("Gradient: max point value"),
		),
		mcp.WithString("maxColor",
			mcp.Description("Gradient: max point color as hex"),
		),
		mcp.WithNumber("index",
			mcp.Description("Position in the rule list (default: append at 0)"),
		),
	)
	s.AddTool(addRuleTool, common.Instrumented("sheets_add_conditional_rule", "sheets", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAddRule(ctx, request, sc)
		}))

	updateRuleTool := mcp.NewTool("sheets_update_conditional_rule",
		mcp.WithDescription("Replace a conditional formatting rule at a given index"),
		accountOption(),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("sheetName",
			mcp.Description("Sheet holding the rule (default: first sheet)"),
		),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Index of the rule to replace"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range the new rule applies to"),
		),
		mcp.WithString("conditionType",
			mcp.Description("Boolean rule condition type"),
		),
		mcp.WithString("conditionValues",
			mcp.Description("Condition value (string) or array of values"),
		),
		mcp.WithString("backgroundColor",
			mcp.Description("Background color as hex"),
		),
		mcp.WithString("textColor",
			mcp.Description("Text color as hex"),
		),
		mcp.WithBoolean("bold",
			mcp.Description("Bold text"),
		),
	)
	s.AddTool(updateRuleTool, common.Instrumented("sheets_update_conditional_rule", "sheets", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateRule(ctx, request, sc)
		}))

	deleteRuleTool := mcp.NewTool("sheets_delete_conditional_rule",
		mcp.WithDescription("Delete a conditional formatting rule at a given index"),
		accountOption(),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("sheetName",
			mcp.Description("Sheet holding the rule (default: first sheet)"),
		),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Index of the rule to delete"),
		),
	)
	s.AddTool(deleteRuleTool, common.Instrumented("sheets_delete_conditional_rule", "sheets", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteRule(ctx, request, sc)
		}))

	return nil
}

func handleListRules(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID := request.GetString("spreadsheetId", "")
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}

	client, err := sheetsClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	sheetList, titles, err := client.GetSheetsWithRules(spreadsheetID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get conditional rules: %v", err)), nil
	}

	var b strings.Builder
	total := 0
	for _, sheet := range sheetList {
		if len(sheet.ConditionalFormats) == 0 {
			continue
		}
		fmt.Fprintf(&b, "Sheet %q:\n", sheet.Properties.Title)
		for i, rule := range sheet.ConditionalFormats {
			fmt.Fprintf(&b, "%s\n", sheets.SummarizeRule(rule, i, titles))
			total++
		}
	}
	if total == 0 {
		return mcp.NewToolResultText("No conditional formatting rules found"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Found %d rules:\n%s", total, b.String())), nil
}

// ruleFromRequest builds a boolean or gradient conditional-format rule
// from the request arguments, plus the grid range it applies to.
func ruleFromRequest(request mcp.CallToolRequest, sheetList []*sheets_v4.Sheet) (*sheets_v4.ConditionalFormatRule, error) {
	rangeName := request.GetString("range", "")
	gridRange, err := sheets.ParseA1Range(rangeName, sheetList)
	if err != nil {
		return nil, fmt.Errorf("invalid range: %w", err)
	}

	rule := &sheets_v4.ConditionalFormatRule{Ranges: []*sheets_v4.GridRange{gridRange}}

	conditionType := request.GetString("conditionType", "")
	minColor := request.GetString("minColor", "")
	switch {
	case conditionType != "" && minColor != "":
		return nil, fmt.Errorf("conditionType and gradient points are mutually exclusive")

	case conditionType != "":
		var values []string
		if raw := request.GetArguments()["conditionValues"]; raw != nil {
			values, err = batch.ParseStringOrArray(raw, "conditionValues")
			if err != nil {
				return nil, err
			}
		}
		rule.BooleanRule, err = sheets.BuildBooleanRule(&sheets.BooleanRuleSpec{
			ConditionType:   conditionType,
			ConditionValues: values,
			BackgroundColor: request.GetString("backgroundColor", ""),
			TextColor:       request.GetString("textColor", ""),
			Bold:            request.GetBool("bold", false),
		})
		if err != nil {
			return nil, err
		}

	case minColor != "":
		minPoint := &sheets.GradientPointSpec{
			Type:  request.GetString("minType", "MIN"),
			Value: request.GetString("minValue", ""),
			Color: minColor,
		}
		maxPoint := &sheets.GradientPointSpec{
			Type:  request.GetString("maxType", "MAX"),
			Value: request.GetString("maxValue", ""),
			Color: request.GetString("maxColor", ""),
		}
		var midPoint *sheets.GradientPointSpec
		if midColor := request.GetString("midColor", ""); midColor != "" {
			midPoint = &sheets.GradientPointSpec{
				Type:  request.GetString("midType", ""),
				Value: request.GetString("midValue", ""),
				Color: midColor,
			}
		}
		rule.GradientRule, err = sheets.BuildGradientRule(minPoint, midPoint, maxPoint)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("either conditionType (boolean rule) or minColor/maxColor (gradient rule) is required")
	}

	return rule, nil
}

func handleAddRule(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID := request.GetString("spreadsheetId", "")
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}

	client, err := sheetsClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	spreadsheet, err := client.GetSpreadsheet(spreadsheetID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get spreadsheet: %v", err)), nil
	}

	rule, err := ruleFromRequest(request, spreadsheet.Sheets)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	index := int64(request.GetInt("index", 0))
	if err := client.AddConditionalRule(spreadsheetID, rule, index); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to add rule: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Conditional formatting rule added at index %d", index)), nil
}

// sheetIDByName resolves the sheet to operate on, defaulting to the
// first sheet.
func sheetIDByName(sheetList []*sheets_v4.Sheet, name string) (int64, error) {
	sheet, err := sheets.SelectSheet(sheetList, name)
	if err != nil {
		return 0, err
	}
	return sheet.Properties.SheetId, nil
}

func handleUpdateRule(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID := request.GetString("spreadsheetId", "")
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}
	index := int64(request.GetInt("index", -1))
	if index < 0 {
		return mcp.NewToolResultError("index is required"), nil
	}

	client, err := sheetsClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	spreadsheet, err := client.GetSpreadsheet(spreadsheetID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get spreadsheet: %v", err)), nil
	}
	sheetID, err := sheetIDByName(spreadsheet.Sheets, request.GetString("sheetName", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rule, err := ruleFromRequest(request, spreadsheet.Sheets)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.UpdateConditionalRule(spreadsheetID, sheetID, index, rule); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update rule: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Conditional formatting rule %d updated", index)), nil
}

func handleDeleteRule(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID := request.GetString("spreadsheetId", "")
	if spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}
	index := int64(request.GetInt("index", -1))
	if index < 0 {
		return mcp.NewToolResultError("index is required"), nil
	}

	client, err := sheetsClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	spreadsheet, err := client.GetSpreadsheet(spreadsheetID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get spreadsheet: %v", err)), nil
	}
	sheetID, err := sheetIDByName(spreadsheet.Sheets, request.GetString("sheetName", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteConditionalRule(spreadsheetID, sheetID, index); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete rule: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Conditional formatting rule %d deleted", index)), nil
}
