package sheets

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	sheets "google.golang.org/api/sheets/v4"
)

var a1PartRegex = regexp.MustCompile(`^([A-Za-z]*)(\d*)$`)

// ColumnToIndex converts column letters (A, B, AA) to a zero-based index.
func ColumnToIndex(column string) (int64, error) {
	if column == "" {
		return 0, fmt.Errorf("column letters must not be empty")
	}
	var result int64
	for _, r := range strings.ToUpper(column) {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column letters %q", column)
		}
		result = result*26 + int64(r-'A'+1)
	}
	return result - 1, nil
}

// IndexToColumn converts a zero-based column index to column letters
// (0 -> A, 25 -> Z, 26 -> AA).
func IndexToColumn(index int64) string {
	if index < 0 {
		return ""
	}
	var letters []byte
	n := index + 1
	for n > 0 {
		n--
		letters = append([]byte{byte('A' + n%26)}, letters...)
		n /= 26
	}
	return string(letters)
}

// a1Part holds one parsed corner of an A1 range. Row and column may be
// absent independently ("C" is a whole column, "3" a whole row).
type a1Part struct {
	col, row       int64
	hasCol, hasRow bool
}

// parseA1Part parses a single A1 part like "B2", "C", or "$A$1".
func parseA1Part(part string) (a1Part, error) {
	clean := strings.ReplaceAll(part, "$", "")
	m := a1PartRegex.FindStringSubmatch(clean)
	if m == nil {
		return a1Part{}, fmt.Errorf("invalid A1 range part %q", part)
	}

	var p a1Part
	if m[1] != "" {
		col, err := ColumnToIndex(m[1])
		if err != nil {
			return a1Part{}, err
		}
		p.col = col
		p.hasCol = true
	}
	if m[2] != "" {
		row, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil || row < 1 {
			return a1Part{}, fmt.Errorf("invalid row number in A1 part %q", part)
		}
		p.row = row - 1
		p.hasRow = true
	}
	if !p.hasCol && !p.hasRow {
		return a1Part{}, fmt.Errorf("invalid A1 range part %q", part)
	}
	return p, nil
}

// SplitSheetAndRange splits A1 notation into sheet name and range part,
// handling quoted sheet names: "'My Sheet'!$A$1:B10" -> ("My Sheet",
// "$A$1:B10"). The sheet name is empty when none is given.
func SplitSheetAndRange(rangeName string) (string, string) {
	if !strings.Contains(rangeName, "!") {
		return "", rangeName
	}

	if strings.HasPrefix(rangeName, "'") {
		if closing := strings.Index(rangeName, "'!"); closing != -1 {
			name := strings.ReplaceAll(rangeName[1:closing], "''", "'")
			return name, rangeName[closing+2:]
		}
	}

	parts := strings.SplitN(rangeName, "!", 2)
	return strings.Trim(strings.TrimSpace(parts[0]), "'"), parts[1]
}

// ParseA1Range converts an A1-style range with an optional sheet name
// into a GridRange against the given sheet list. Without a sheet name the
// first sheet is used. Unbounded dimensions are omitted from the range
// (ForceSendFields keeps explicit zero indices on the wire).
func ParseA1Range(rangeName string, sheetList []*sheets.Sheet) (*sheets.GridRange, error) {
	if len(sheetList) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	sheetName, a1 := SplitSheetAndRange(rangeName)

	var target *sheets.Sheet
	if sheetName != "" {
		for _, s := range sheetList {
			if s.Properties != nil && s.Properties.Title == sheetName {
				target = s
				break
			}
		}
		if target == nil {
			var titles []string
			for _, s := range sheetList {
				if s.Properties != nil {
					titles = append(titles, s.Properties.Title)
				}
			}
			return nil, fmt.Errorf("sheet %q not found in spreadsheet, available sheets: %s", sheetName, strings.Join(titles, ", "))
		}
	} else {
		target = sheetList[0]
	}
	if target.Properties == nil {
		return nil, fmt.Errorf("sheet has no properties")
	}

	if a1 == "" {
		return nil, fmt.Errorf("A1-style range must not be empty (e.g. A1 or A1:B10)")
	}

	startPart, endPart := a1, a1
	if i := strings.Index(a1, ":"); i != -1 {
		startPart, endPart = a1[:i], a1[i+1:]
	}

	start, err := parseA1Part(startPart)
	if err != nil {
		return nil, err
	}
	end, err := parseA1Part(endPart)
	if err != nil {
		return nil, err
	}

	gr := &sheets.GridRange{SheetId: target.Properties.SheetId}
	gr.ForceSendFields = append(gr.ForceSendFields, "SheetId")
	if start.hasRow {
		gr.StartRowIndex = start.row
		gr.ForceSendFields = append(gr.ForceSendFields, "StartRowIndex")
	}
	if start.hasCol {
		gr.StartColumnIndex = start.col
		gr.ForceSendFields = append(gr.ForceSendFields, "StartColumnIndex")
	}
	if end.hasRow {
		gr.EndRowIndex = end.row + 1
	}
	if end.hasCol {
		gr.EndColumnIndex = end.col + 1
	}
	return gr, nil
}

// GridRangeToA1 renders a GridRange as an A1-like string using known
// sheet titles. End indices of zero are treated as unbounded, which holds
// for ranges decoded from API responses since exclusive end indices are
// never zero.
func GridRangeToA1(gr *sheets.GridRange, sheetTitles map[int64]string) string {
	title, ok := sheetTitles[gr.SheetId]
	if !ok {
		title = fmt.Sprintf("Sheet %d", gr.SheetId)
	}

	startLabel := ""
	if gr.StartColumnIndex > 0 || gr.EndColumnIndex > 0 {
		startLabel += IndexToColumn(gr.StartColumnIndex)
	}
	if gr.StartRowIndex > 0 || gr.EndRowIndex > 0 {
		startLabel += strconv.FormatInt(gr.StartRowIndex+1, 10)
	}

	endLabel := ""
	if gr.EndColumnIndex > 0 {
		endLabel += IndexToColumn(gr.EndColumnIndex - 1)
	}
	if gr.EndRowIndex > 0 {
		endLabel += strconv.FormatInt(gr.EndRowIndex, 10)
	}

	if startLabel == "" && endLabel == "" {
		return title
	}
	if endLabel == "" || startLabel == endLabel {
		return title + "!" + startLabel
	}
	return title + "!" + startLabel + ":" + endLabel
}
