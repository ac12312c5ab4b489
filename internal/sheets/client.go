package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/workspace-mcp/workspace-mcp/internal/google"
)

// Client wraps the Sheets service for a single account.
type Client struct {
	svc     *sheets.Service
	account string
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates a Sheets client authenticated as the given
// account.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, nil)
}

// NewClientForAccountWithProvider creates a Sheets client whose OAuth
// token comes from the given provider. A nil provider falls back to the
// local token files.
func NewClientForAccountWithProvider(ctx context.Context, account string, provider google.TokenProvider) (*Client, error) {
	httpClient, err := google.GetHTTPClientForAccountWithProvider(ctx, account, provider)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w. Please authenticate with Google through your MCP client", account, err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}

	return &Client{svc: svc, account: account}, nil
}

// GetSpreadsheet fetches spreadsheet metadata including sheet properties.
func (c *Client) GetSpreadsheet(spreadsheetID string) (*sheets.Spreadsheet, error) {
	ss, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("spreadsheetId, properties(title), sheets(properties(sheetId,title,gridProperties))").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}
	return ss, nil
}

// GetSheetsWithRules fetches sheet properties together with conditional
// formatting rules, plus a sheetId -> title map for rendering ranges.
func (c *Client) GetSheetsWithRules(spreadsheetID string) ([]*sheets.Sheet, map[int64]string, error) {
	ss, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields(googleapi.Field("sheets(properties(sheetId,title),conditionalFormats)")).
		Do()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}

	titles := make(map[int64]string, len(ss.Sheets))
	for _, sheet := range ss.Sheets {
		if sheet.Properties != nil {
			titles[sheet.Properties.SheetId] = sheet.Properties.Title
		}
	}
	return ss.Sheets, titles, nil
}

// SelectSheet finds a sheet by title, defaulting to the first sheet when
// the name is empty.
func SelectSheet(sheetList []*sheets.Sheet, sheetName string) (*sheets.Sheet, error) {
	if len(sheetList) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	if sheetName == "" {
		return sheetList[0], nil
	}
	var titles []string
	for _, s := range sheetList {
		if s.Properties == nil {
			continue
		}
		if s.Properties.Title == sheetName {
			return s, nil
		}
		titles = append(titles, s.Properties.Title)
	}
	return nil, fmt.Errorf("sheet %q not found, available sheets: %s", sheetName, joinTitles(titles))
}

func joinTitles(titles []string) string {
	if len(titles) == 0 {
		return "none"
	}
	out := titles[0]
	for _, t := range titles[1:] {
		out += ", " + t
	}
	return out
}

// ReadRange reads cell values from an A1 range.
func (c *Client) ReadRange(spreadsheetID, rangeName string) (*sheets.ValueRange, error) {
	values, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, rangeName).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", rangeName, err)
	}
	return values, nil
}

// WriteRange writes cell values to an A1 range, interpreting input the
// way the Sheets UI would.
func (c *Client) WriteRange(spreadsheetID, rangeName string, values [][]any) (*sheets.UpdateValuesResponse, error) {
	resp, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, rangeName, &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to write range %s: %w", rangeName, err)
	}
	return resp, nil
}

// ClearRange clears cell values in an A1 range.
func (c *Client) ClearRange(spreadsheetID, rangeName string) error {
	_, err := c.svc.Spreadsheets.Values.Clear(spreadsheetID, rangeName, &sheets.ClearValuesRequest{}).Do()
	if err != nil {
		return fmt.Errorf("failed to clear range %s: %w", rangeName, err)
	}
	return nil
}

// CreateSpreadsheet creates a spreadsheet with the given title and
// optional named sheets.
func (c *Client) CreateSpreadsheet(title string, sheetNames []string) (*sheets.Spreadsheet, error) {
	if title == "" {
		return nil, fmt.Errorf("spreadsheet title is required")
	}

	ss := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}
	for _, name := range sheetNames {
		ss.Sheets = append(ss.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: name},
		})
	}

	created, err := c.svc.Spreadsheets.Create(ss).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create spreadsheet %s: %w", title, err)
	}
	return created, nil
}

// CreateSheet adds a sheet to an existing spreadsheet and returns its ID.
func (c *Client) CreateSheet(spreadsheetID, title string) (int64, error) {
	if title == "" {
		return 0, fmt.Errorf("sheet title is required")
	}

	resp, err := c.BatchUpdate(spreadsheetID, []*sheets.Request{
		{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create sheet %s: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("addSheet reply missing sheet properties")
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// FormatRange applies a cell format to a grid range.
func (c *Client) FormatRange(spreadsheetID string, gridRange *sheets.GridRange, format *sheets.CellFormat, fields string) error {
	if fields == "" {
		return fmt.Errorf("format fields mask is required")
	}
	_, err := c.BatchUpdate(spreadsheetID, []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range:  gridRange,
				Cell:   &sheets.CellData{UserEnteredFormat: format},
				Fields: "userEnteredFormat(" + fields + ")",
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to format range: %w", err)
	}
	return nil
}

// AddConditionalRule appends a conditional-formatting rule to a sheet.
func (c *Client) AddConditionalRule(spreadsheetID string, rule *sheets.ConditionalFormatRule, index int64) error {
	_, err := c.BatchUpdate(spreadsheetID, []*sheets.Request{
		{
			AddConditionalFormatRule: &sheets.AddConditionalFormatRuleRequest{
				Rule:  rule,
				Index: index,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to add conditional format rule: %w", err)
	}
	return nil
}

// UpdateConditionalRule replaces the rule at the given index on a sheet.
func (c *Client) UpdateConditionalRule(spreadsheetID string, sheetID, index int64, rule *sheets.ConditionalFormatRule) error {
	_, err := c.BatchUpdate(spreadsheetID, []*sheets.Request{
		{
			UpdateConditionalFormatRule: &sheets.UpdateConditionalFormatRuleRequest{
				SheetId: sheetID,
				Index:   index,
				Rule:    rule,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update conditional format rule %d: %w", index, err)
	}
	return nil
}

// DeleteConditionalRule removes the rule at the given index on a sheet.
func (c *Client) DeleteConditionalRule(spreadsheetID string, sheetID, index int64) error {
	_, err := c.BatchUpdate(spreadsheetID, []*sheets.Request{
		{
			DeleteConditionalFormatRule: &sheets.DeleteConditionalFormatRuleRequest{
				SheetId: sheetID,
				Index:   index,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete conditional format rule %d: %w", index, err)
	}
	return nil
}

// BatchUpdate runs a raw batchUpdate against a spreadsheet.
func (c *Client) BatchUpdate(spreadsheetID string, requests []*sheets.Request) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	resp, err := c.svc.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("batchUpdate failed for spreadsheet %s: %w", spreadsheetID, err)
	}
	return resp, nil
}
