package sheets_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	sheets_v4 "google.golang.org/api/sheets/v4"

	"github.com/workspace-mcp/workspace-mcp/internal/drive"
	"github.com/workspace-mcp/workspace-mcp/internal/server"
	"github.com/workspace-mcp/workspace-mcp/internal/sheets"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/batch"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/common"
)

func accountOption() mcp.ToolOption {
	return mcp.WithString("user_google_email",
		mcp.Description("The Google account to act on. Optional when the request is already authenticated."),
	)
}

func sheetsClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*sheets.Client, error) {
	account := common.AccountFromRequest(ctx, request)
	return sc.SheetsClientForAccount(account)
}

// RegisterSheetsTools registers all Google Sheets tools with the MCP
// server. Write operations are skipped when readOnly is set.
func RegisterSheetsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerRuleTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register conditional-format tools: %w", err)
	}

	listTool := mcp.NewTool("sheets_list_spreadsheets",
		mcp.WithDescription("List spreadsheets accessible to the account, most recently modified first"),
		accountOption(),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of results (default: 25)"),
		),
	)
	s.AddTool(listTool, common.Instrumented("sheets_list_spreadsheets", "drive", "search", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSpreadsheets(ctx, request, sc)
		}))

	infoTool := mcp.NewTool("sheets_get_info",
		mcp.WithDescription("Get spreadsheet title and the list of its sheets"),
		accountOption(),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
	)
	s.AddTool(infoTool, common.Instrumented("sheets_get_info", "sheets", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetInfo(ctx, request, sc)
		}))

	readTool := mcp.NewTool("sheets_read_range",
		mcp.WithDescription("Read values from a spreadsheet range in A1 notation"),
		accountOption(),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range, e.g. 'Sheet1!A1:C10'"),
		),
	)
	s.AddTool(readTool, common.Instrumented("sheets_read_range", "sheets", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadRange(ctx, request, sc)
		}))

	if !readOnly {
		modifyTool := mcp.NewTool("sheets_modify_range",
			mcp.WithDescription("Write values to a spreadsheet range, or clear it"),
			accountOption(),
			mcp.WithString("spreadsheetId",
				mcp.Required(),
				mcp.Description("The ID of the spreadsheet"),
			),
			mcp.WithString("range",
				mcp.Required(),
				mcp.Description("A1 range, e.g. 'Sheet1!A1:C10'"),
			),
			mcp.WithString("values",
				mcp.Description("JSON array of row arrays, e.g. [[\"a\",1],[\"b\",2]]"),
			),
			mcp.WithBoolean("clearValues",
				mcp.Description("Clear the range instead of writing values"),
			),
		)
		s.AddTool(modifyTool, common.Instrumented("sheets_modify_range", "sheets", "update", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleModifyRange(ctx, request, sc)
			}))

		createSpreadsheetTool := mcp.NewTool("sheets_create_spreadsheet",
			mcp.WithDescription("Create a new spreadsheet"),
			accountOption(),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Title of the new spreadsheet"),
			),
			mcp.WithString("sheetNames",
				mcp.Description("Sheet name (string) or array of sheet names to create"),
			),
		)
		s.AddTool(createSpreadsheetTool, common.Instrumented("sheets_create_spreadsheet", "sheets", "create", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleCreateSpreadsheet(ctx, request, sc)
			}))

		createSheetTool := mcp.NewTool("sheets_create_sheet",
			mcp.WithDescription("Add a sheet to an existing spreadsheet"),
			accountOption(),
			mcp.WithString("spreadsheetId",
				mcp.Required(),
				mcp.Description("The ID of the spreadsheet"),
			),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Title of the new sheet"),
			),
		)
		s.AddTool(createSheetTool, common.Instrumented("sheets_create_sheet", "sheets", "update", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleCreateSheet(ctx, request, sc)
			}))

		formatTool := mcp.NewTool("sheets_format_range",
			mcp.WithDescription("Apply cell formatting to a range"),
			accountOption(),
			mcp.WithString("spreadsheetId",
				mcp.Required(),
				mcp.Description("The ID of the spreadsheet"),
			),
			mcp.WithString("range",
				mcp.Required(),
				mcp.Description("A1 range, e.g. 'Sheet1!A1:C10'"),
			),
			mcp.WithString("backgroundColor",
				mcp.Description("Background color as hex, e.g. '#ffcccc'"),
			),
			mcp.WithString("textColor",
				mcp.Description("Text color as hex, e.g. '#990000'"),
			),
			mcp.WithBoolean("bold",
				mcp.Description("Bold text"),
			),
			mcp.WithBoolean("italic",
				mcp.Description("Italic text"),
			),
			mcp.WithNumber("fontSize",
				mcp.Description("Font size in points"),
			),
		)
		s.AddTool(formatTool, common.Instrumented("sheets_format_range", "sheets", "update", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleFormatRange(ctx, request, sc)
			}))
	}

	return nil
}

func handleListSpreadsheets(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	maxResults := int64(request.GetInt("maxResults", 25))

	// Spreadsheet discovery goes through the Drive API; the Sheets API
	// has no listing endpoint.
	account := common.AccountFromRequest(ctx, request)
	client, err := sc.DriveClientForAccount(account)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("mimeType='%s' and trashed = false", drive.SpreadsheetMimeType)
	files, err := client.SearchFiles(query, maxResults, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list spreadsheets: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d spreadsheets:\n", len(files))
	for i, f := range files {
		fmt.Fprintf(&b, "%d. %s (ID: %s, Modified: %s)\n", i+1, f.Name, f.Id, f.ModifiedTime)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleGetInfo(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	var b strings.Builder
	fmt.Fprintf(&b, "Spreadsheet: %s (ID: %s)\n", spreadsheet.Properties.Title, spreadsheetID)
	fmt.Fprintf(&b, "Sheets (%d):\n", len(spreadsheet.Sheets))
	for _, sheet := range spreadsheet.Sheets {
		p := sheet.Properties
		fmt.Fprintf(&b, "- %s (ID: %d", p.Title, p.SheetId)
		if p.GridProperties != nil {
			fmt.Fprintf(&b, ", %dx%d", p.GridProperties.RowCount, p.GridProperties.ColumnCount)
		}
		fmt.Fprintf(&b, ")\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleReadRange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID := request.GetString("spreadsheetId", "")
	rangeName := request.GetString("range", "")
	if spreadsheetID == "" || rangeName == "" {
		return mcp.NewToolResultError("spreadsheetId and range are required"), nil
	}

	client, err := sheetsClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	valueRange, err := client.ReadRange(spreadsheetID, rangeName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read range: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Range %s (%d rows):\n", valueRange.Range, len(valueRange.Values))
	for _, row := range valueRange.Values {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fmt.Sprint(cell)
		}
		fmt.Fprintf(&b, "%s\n", strings.Join(cells, "\t"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleModifyRange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID := request.GetString("spreadsheetId", "")
	rangeName := request.GetString("range", "")
	if spreadsheetID == "" || rangeName == "" {
		return mcp.NewToolResultError("spreadsheetId and range are required"), nil
	}
	clearValues := request.GetBool("clearValues", false)
	valuesJSON := request.GetString("values", "")

	if clearValues && valuesJSON != "" {
		return mcp.NewToolResultError("values and clearValues are mutually exclusive"), nil
	}
	if !clearValues && valuesJSON == "" {
		return mcp.NewToolResultError("either values or clearValues is required"), nil
	}

	client, err := sheetsClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	if clearValues {
		if err := client.ClearRange(spreadsheetID, rangeName); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to clear range: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Range %s cleared", rangeName)), nil
	}

	var values [][]any
	if err := json.Unmarshal([]byte(valuesJSON), &values); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("values must be a JSON array of row arrays: %v", err)), nil
	}

	resp, err := client.WriteRange(spreadsheetID, rangeName, values)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to write range: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Updated %d cells in %s", resp.UpdatedCells, resp.UpdatedRange)), nil
}

func handleCreateSpreadsheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	title := request.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	var sheetNames []string
	var err error
	if args["sheetNames"] != nil {
		sheetNames, err = batch.ParseStringOrArray(args["sheetNames"], "sheetNames")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	client, err := sheetsClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	spreadsheet, err := client.CreateSpreadsheet(title, sheetNames)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create spreadsheet: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Spreadsheet created: %s (ID: %s)\n%s",
		title, spreadsheet.SpreadsheetId, spreadsheet.SpreadsheetUrl)), nil
}

func handleCreateSheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID := request.GetString("spreadsheetId", "")
	title := request.GetString("title", "")
	if spreadsheetID == "" || title == "" {
		return mcp.NewToolResultError("spreadsheetId and title are required"), nil
	}

	client, err := sheetsClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	sheetID, err := client.CreateSheet(spreadsheetID, title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create sheet: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Sheet %q created with ID %d", title, sheetID)), nil
}

func handleFormatRange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	spreadsheetID := request.GetString("spreadsheetId", "")
	rangeName := request.GetString("range", "")
	if spreadsheetID == "" || rangeName == "" {
		return mcp.NewToolResultError("spreadsheetId and range are required"), nil
	}

	format, fields, err := buildCellFormat(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(fields) == 0 {
		return mcp.NewToolResultError("at least one formatting option is required"), nil
	}

	client, err := sheetsClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	spreadsheet, err := client.GetSpreadsheet(spreadsheetID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get spreadsheet: %v", err)), nil
	}
	gridRange, err := sheets.ParseA1Range(rangeName, spreadsheet.Sheets)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid range: %v", err)), nil
	}

	if err := client.FormatRange(spreadsheetID, gridRange, format, strings.Join(fields, ",")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format range: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Formatting applied to %s", rangeName)), nil
}

// buildCellFormat assembles a CellFormat and the matching field mask
// entries from the formatting arguments.
func buildCellFormat(request mcp.CallToolRequest) (*sheets_v4.CellFormat, []string, error) {
	format := &sheets_v4.CellFormat{}
	var fields []string

	if bg := request.GetString("backgroundColor", ""); bg != "" {
		color, err := sheets.ParseHexColor(bg)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid backgroundColor: %w", err)
		}
		format.BackgroundColor = color
		fields = append(fields, "backgroundColor")
	}

	textFormat := &sheets_v4.TextFormat{}
	var textFields []string
	if tc := request.GetString("textColor", ""); tc != "" {
		color, err := sheets.ParseHexColor(tc)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid textColor: %w", err)
		}
		textFormat.ForegroundColor = color
		textFields = append(textFields, "textFormat.foregroundColor")
	}
	if request.GetBool("bold", false) {
		textFormat.Bold = true
		textFields = append(textFields, "textFormat.bold")
	}
	if request.GetBool("italic", false) {
		textFormat.Italic = true
		textFields = append(textFields, "textFormat.italic")
	}
	if size := request.GetInt("fontSize", 0); size > 0 {
		textFormat.FontSize = int64(size)
		textFields = append(textFields, "textFormat.fontSize")
	}
	if len(textFields) > 0 {
		format.TextFormat = textFormat
		fields = append(fields, textFields...)
	}

	return format, fields, nil
}
