package sheets

import (
	"math"
	"strings"
	"testing"

	sheets "google.golang.org/api/sheets/v4"
)

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#FF8000")
	if err != nil {
		t.Fatalf("ParseHexColor() error = %v", err)
	}
	if math.Abs(c.Red-1.0) > 0.001 || math.Abs(c.Green-128.0/255) > 0.001 || c.Blue != 0 {
		t.Errorf("ParseHexColor(#FF8000) = %+v", c)
	}

	if _, err := ParseHexColor("00FF00"); err != nil {
		t.Errorf("bare RRGGBB rejected: %v", err)
	}
	if _, err := ParseHexColor("#12345"); err == nil {
		t.Error("short hex accepted")
	}
	if _, err := ParseHexColor("#GGGGGG"); err == nil {
		t.Error("non-hex accepted")
	}
}

func TestColorToHex(t *testing.T) {
	tests := []struct {
		name  string
		color *sheets.Color
		want  string
	}{
		{"nil", nil, ""},
		{"red", &sheets.Color{Red: 1}, "#FF0000"},
		{"mixed", &sheets.Color{Red: 1, Green: 128.0 / 255, Blue: 0}, "#FF8000"},
		{"zero value is black", &sheets.Color{}, "#000000"},
	}
	for _, tt := range tests {
		if got := ColorToHex(tt.color); got != tt.want {
			t.Errorf("%s: ColorToHex() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestHexColorRoundTrip(t *testing.T) {
	for _, hex := range []string{"#000000", "#FFFFFF", "#1A2B3C", "#FF8000"} {
		c, err := ParseHexColor(hex)
		if err != nil {
			t.Fatalf("ParseHexColor(%q) error = %v", hex, err)
		}
		if got := ColorToHex(c); got != hex {
			t.Errorf("round trip %q -> %q", hex, got)
		}
	}
}

func TestBuildBooleanRule(t *testing.T) {
	rule, err := BuildBooleanRule(&BooleanRuleSpec{
		ConditionType:   "NUMBER_GREATER",
		ConditionValues: []string{"1000"},
		BackgroundColor: "#00FF00",
		TextColor:       "#000000",
		Bold:            true,
	})
	if err != nil {
		t.Fatalf("BuildBooleanRule() error = %v", err)
	}

	if rule.Condition.Type != "NUMBER_GREATER" {
		t.Errorf("condition type = %q", rule.Condition.Type)
	}
	if len(rule.Condition.Values) != 1 || rule.Condition.Values[0].UserEnteredValue != "1000" {
		t.Errorf("condition values = %+v", rule.Condition.Values)
	}
	if rule.Format.BackgroundColor == nil {
		t.Error("background color not set")
	}
	if rule.Format.TextFormat == nil || !rule.Format.TextFormat.Bold {
		t.Error("bold text format not set")
	}
}

func TestBuildBooleanRuleValidation(t *testing.T) {
	if _, err := BuildBooleanRule(&BooleanRuleSpec{ConditionType: "SOMETHING_ELSE"}); err == nil {
		t.Error("unknown condition type accepted")
	}
	if _, err := BuildBooleanRule(&BooleanRuleSpec{ConditionType: "BLANK", BackgroundColor: "nope"}); err == nil {
		t.Error("invalid color accepted")
	}
}

func TestBuildGradientRule(t *testing.T) {
	rule, err := BuildGradientRule(
		&GradientPointSpec{Type: "MIN", Color: "#FFFFFF"},
		&GradientPointSpec{Type: "PERCENTILE", Value: "50", Color: "#FFFF00"},
		&GradientPointSpec{Type: "MAX", Color: "#FF0000"},
	)
	if err != nil {
		t.Fatalf("BuildGradientRule() error = %v", err)
	}
	if rule.Minpoint == nil || rule.Midpoint == nil || rule.Maxpoint == nil {
		t.Fatal("missing interpolation points")
	}
	if rule.Midpoint.Value != "50" {
		t.Errorf("midpoint value = %q", rule.Midpoint.Value)
	}

	if _, err := BuildGradientRule(nil, nil, &GradientPointSpec{Type: "MAX", Color: "#FF0000"}); err == nil {
		t.Error("missing min point accepted")
	}
	if _, err := BuildGradientRule(
		&GradientPointSpec{Type: "SOMETIMES", Color: "#FFFFFF"},
		nil,
		&GradientPointSpec{Type: "MAX", Color: "#FF0000"},
	); err == nil {
		t.Error("invalid point type accepted")
	}
}

func TestSummarizeRule(t *testing.T) {
	titles := map[int64]string{0: "Data"}
	ranges := []*sheets.GridRange{
		{SheetId: 0, StartRowIndex: 0, StartColumnIndex: 0, EndRowIndex: 10, EndColumnIndex: 2},
	}

	boolRule := &sheets.ConditionalFormatRule{
		Ranges: ranges,
		BooleanRule: &sheets.BooleanRule{
			Condition: &sheets.BooleanCondition{
				Type:   "NUMBER_GREATER",
				Values: []*sheets.ConditionValue{{UserEnteredValue: "100"}},
			},
			Format: &sheets.CellFormat{
				BackgroundColor: &sheets.Color{Red: 1},
			},
		},
	}
	got := SummarizeRule(boolRule, 0, titles)
	for _, want := range []string{"[0]", "NUMBER_GREATER", "values=[100]", "bg #FF0000", "Data!A1:B10"} {
		if !strings.Contains(got, want) {
			t.Errorf("boolean summary %q missing %q", got, want)
		}
	}

	gradientRule := &sheets.ConditionalFormatRule{
		Ranges: ranges,
		GradientRule: &sheets.GradientRule{
			Minpoint: &sheets.InterpolationPoint{Type: "MIN", Color: &sheets.Color{}},
			Maxpoint: &sheets.InterpolationPoint{Type: "MAX", Color: &sheets.Color{Red: 1}},
		},
	}
	got = SummarizeRule(gradientRule, 1, titles)
	for _, want := range []string{"[1] gradient", "MIN #000000", "MAX #FF0000"} {
		if !strings.Contains(got, want) {
			t.Errorf("gradient summary %q missing %q", got, want)
		}
	}

	empty := &sheets.ConditionalFormatRule{}
	got = SummarizeRule(empty, 2, titles)
	if !strings.Contains(got, "(unknown rule)") || !strings.Contains(got, "(no range)") {
		t.Errorf("empty summary = %q", got)
	}
}
