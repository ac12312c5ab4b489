package docs

import (
	"fmt"
	"strconv"
	"strings"

	docs "google.golang.org/api/docs/v1"
)

// Operation is one edit in a batch-update call, expressed in tool-facing
// terms. Type selects the operation; the other fields it needs depend on
// the type.
type Operation struct {
	Type string `json:"type"`

	Index      int64  `json:"index,omitempty"`
	StartIndex int64  `json:"startIndex,omitempty"`
	EndIndex   int64  `json:"endIndex,omitempty"`
	Text       string `json:"text,omitempty"`

	Rows    int64 `json:"rows,omitempty"`
	Columns int64 `json:"columns,omitempty"`

	FindText    string `json:"findText,omitempty"`
	ReplaceText string `json:"replaceText,omitempty"`
	MatchCase   bool   `json:"matchCase,omitempty"`

	Style *TextStyle `json:"style,omitempty"`
}

// Supported Operation types.
const (
	OpInsertText      = "insert_text"
	OpDeleteRange     = "delete_range"
	OpReplaceRange    = "replace_range"
	OpFormatText      = "format_text"
	OpInsertTable     = "insert_table"
	OpInsertPageBreak = "insert_page_break"
	OpFindReplace     = "find_replace"
)

// TextStyle describes character formatting. Nil pointer fields are left
// unchanged by a format operation.
type TextStyle struct {
	Bold       *bool  `json:"bold,omitempty"`
	Italic     *bool  `json:"italic,omitempty"`
	Underline  *bool  `json:"underline,omitempty"`
	FontSize   int64  `json:"fontSize,omitempty"`
	FontFamily string `json:"fontFamily,omitempty"`
	TextColor  string `json:"textColor,omitempty"`
}

// buildTextStyle converts a TextStyle into the API shape plus the field
// mask naming exactly the styles being set.
func buildTextStyle(style *TextStyle) (*docs.TextStyle, string, error) {
	ts := &docs.TextStyle{}
	var fields []string

	if style.Bold != nil {
		ts.Bold = *style.Bold
		ts.ForceSendFields = append(ts.ForceSendFields, "Bold")
		fields = append(fields, "bold")
	}
	if style.Italic != nil {
		ts.Italic = *style.Italic
		ts.ForceSendFields = append(ts.ForceSendFields, "Italic")
		fields = append(fields, "italic")
	}
	if style.Underline != nil {
		ts.Underline = *style.Underline
		ts.ForceSendFields = append(ts.ForceSendFields, "Underline")
		fields = append(fields, "underline")
	}
	if style.FontSize > 0 {
		ts.FontSize = &docs.Dimension{Magnitude: float64(style.FontSize), Unit: "PT"}
		fields = append(fields, "fontSize")
	}
	if style.FontFamily != "" {
		ts.WeightedFontFamily = &docs.WeightedFontFamily{FontFamily: style.FontFamily}
		fields = append(fields, "weightedFontFamily")
	}
	if style.TextColor != "" {
		rgb, err := parseHexRGB(style.TextColor)
		if err != nil {
			return nil, "", err
		}
		ts.ForegroundColor = &docs.OptionalColor{Color: &docs.Color{RgbColor: rgb}}
		fields = append(fields, "foregroundColor")
	}

	if len(fields) == 0 {
		return nil, "", fmt.Errorf("format_text operation sets no styles")
	}
	return ts, strings.Join(fields, ","), nil
}

// parseHexRGB converts "#RRGGBB" to an RgbColor with 0-1 components.
func parseHexRGB(color string) (*docs.RgbColor, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if len(trimmed) != 6 {
		return nil, fmt.Errorf("color %q must be in format #RRGGBB or RRGGBB", color)
	}
	var c [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(trimmed[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("color %q is not valid hex", color)
		}
		c[i] = float64(v) / 255
	}
	rgb := &docs.RgbColor{Red: c[0], Green: c[1], Blue: c[2]}
	rgb.ForceSendFields = []string{"Red", "Green", "Blue"}
	return rgb, nil
}

// BuildRequests validates a list of operations and converts them to Docs
// batchUpdate requests.
func BuildRequests(operations []*Operation) ([]*docs.Request, error) {
	if len(operations) == 0 {
		return nil, fmt.Errorf("at least one operation is required")
	}

	requests := make([]*docs.Request, 0, len(operations))
	for i, op := range operations {
		req, err := buildRequest(op)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		requests = append(requests, req...)
	}
	return requests, nil
}

func buildRequest(op *Operation) ([]*docs.Request, error) {
	switch op.Type {
	case OpInsertText:
		if op.Text == "" {
			return nil, fmt.Errorf("insert_text requires text")
		}
		if op.Index < 1 {
			return nil, fmt.Errorf("insert_text requires index >= 1")
		}
		return []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Location: &docs.Location{Index: op.Index},
				Text:     op.Text,
			},
		}}, nil

	case OpDeleteRange:
		if err := validateRange(op.StartIndex, op.EndIndex); err != nil {
			return nil, err
		}
		return []*docs.Request{{
			DeleteContentRange: &docs.DeleteContentRangeRequest{
				Range: &docs.Range{StartIndex: op.StartIndex, EndIndex: op.EndIndex},
			},
		}}, nil

	case OpReplaceRange:
		if err := validateRange(op.StartIndex, op.EndIndex); err != nil {
			return nil, err
		}
		if op.Text == "" {
			return nil, fmt.Errorf("replace_range requires text")
		}
		// Delete then insert at the vacated position.
		return []*docs.Request{
			{
				DeleteContentRange: &docs.DeleteContentRangeRequest{
					Range: &docs.Range{StartIndex: op.StartIndex, EndIndex: op.EndIndex},
				},
			},
			{
				InsertText: &docs.InsertTextRequest{
					Location: &docs.Location{Index: op.StartIndex},
					Text:     op.Text,
				},
			},
		}, nil

	case OpFormatText:
		if err := validateRange(op.StartIndex, op.EndIndex); err != nil {
			return nil, err
		}
		if op.Style == nil {
			return nil, fmt.Errorf("format_text requires a style")
		}
		style, fields, err := buildTextStyle(op.Style)
		if err != nil {
			return nil, err
		}
		return []*docs.Request{{
			UpdateTextStyle: &docs.UpdateTextStyleRequest{
				Range:     &docs.Range{StartIndex: op.StartIndex, EndIndex: op.EndIndex},
				TextStyle: style,
				Fields:    fields,
			},
		}}, nil

	case OpInsertTable:
		if op.Index < 1 {
			return nil, fmt.Errorf("insert_table requires index >= 1")
		}
		if op.Rows < 1 || op.Columns < 1 {
			return nil, fmt.Errorf("insert_table requires at least 1 row and 1 column")
		}
		return []*docs.Request{{
			InsertTable: &docs.InsertTableRequest{
				Location: &docs.Location{Index: op.Index},
				Rows:     op.Rows,
				Columns:  op.Columns,
			},
		}}, nil

	case OpInsertPageBreak:
		if op.Index < 1 {
			return nil, fmt.Errorf("insert_page_break requires index >= 1")
		}
		return []*docs.Request{{
			InsertPageBreak: &docs.InsertPageBreakRequest{
				Location: &docs.Location{Index: op.Index},
			},
		}}, nil

	case OpFindReplace:
		if op.FindText == "" {
			return nil, fmt.Errorf("find_replace requires find text")
		}
		return []*docs.Request{{
			ReplaceAllText: &docs.ReplaceAllTextRequest{
				ContainsText: &docs.SubstringMatchCriteria{
					Text:      op.FindText,
					MatchCase: op.MatchCase,
				},
				ReplaceText: op.ReplaceText,
			},
		}}, nil

	default:
		return nil, fmt.Errorf("unsupported operation type %q", op.Type)
	}
}

func validateRange(start, end int64) error {
	if start < 1 {
		return fmt.Errorf("start index must be >= 1, got %d", start)
	}
	if end <= start {
		return fmt.Errorf("end index %d must be greater than start index %d", end, start)
	}
	return nil
}
