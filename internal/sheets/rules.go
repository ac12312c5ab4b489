package sheets

import (
	"fmt"
	"strings"

	sheets "google.golang.org/api/sheets/v4"
)

var booleanConditionTypes = map[string]bool{
	"NUMBER_GREATER":         true,
	"NUMBER_GREATER_THAN_EQ": true,
	"NUMBER_LESS":            true,
	"NUMBER_LESS_THAN_EQ":    true,
	"NUMBER_EQ":              true,
	"NUMBER_NOT_EQ":          true,
	"TEXT_CONTAINS":          true,
	"TEXT_NOT_CONTAINS":      true,
	"TEXT_STARTS_WITH":       true,
	"TEXT_ENDS_WITH":         true,
	"TEXT_EQ":                true,
	"DATE_BEFORE":            true,
	"DATE_ON_OR_BEFORE":      true,
	"DATE_AFTER":             true,
	"DATE_ON_OR_AFTER":       true,
	"DATE_EQ":                true,
	"DATE_NOT_EQ":            true,
	"DATE_BETWEEN":           true,
	"DATE_NOT_BETWEEN":       true,
	"NOT_BLANK":              true,
	"BLANK":                  true,
	"CUSTOM_FORMULA":         true,
	"ONE_OF_RANGE":           true,
}

var gradientPointTypes = map[string]bool{
	"MIN":        true,
	"MAX":        true,
	"NUMBER":     true,
	"PERCENT":    true,
	"PERCENTILE": true,
}

// ValidateConditionType checks a boolean-rule condition type.
func ValidateConditionType(conditionType string) error {
	if !booleanConditionTypes[conditionType] {
		return fmt.Errorf("unsupported condition type %q", conditionType)
	}
	return nil
}

// ValidateGradientPointType checks an interpolation point type.
func ValidateGradientPointType(pointType string) error {
	if !gradientPointTypes[pointType] {
		return fmt.Errorf("unsupported gradient point type %q", pointType)
	}
	return nil
}

// BooleanRuleSpec describes a boolean conditional-formatting rule in
// tool-facing terms: hex colors and plain condition values.
type BooleanRuleSpec struct {
	ConditionType   string
	ConditionValues []string
	BackgroundColor string
	TextColor       string
	Bold            bool
}

// BuildBooleanRule constructs a boolean conditional-formatting rule.
func BuildBooleanRule(spec *BooleanRuleSpec) (*sheets.BooleanRule, error) {
	if err := ValidateConditionType(spec.ConditionType); err != nil {
		return nil, err
	}

	condition := &sheets.BooleanCondition{Type: spec.ConditionType}
	for _, v := range spec.ConditionValues {
		condition.Values = append(condition.Values, &sheets.ConditionValue{UserEnteredValue: v})
	}

	format := &sheets.CellFormat{}
	if spec.BackgroundColor != "" {
		color, err := ParseHexColor(spec.BackgroundColor)
		if err != nil {
			return nil, err
		}
		format.BackgroundColor = color
	}
	if spec.TextColor != "" || spec.Bold {
		format.TextFormat = &sheets.TextFormat{Bold: spec.Bold}
		if spec.Bold {
			format.TextFormat.ForceSendFields = []string{"Bold"}
		}
		if spec.TextColor != "" {
			color, err := ParseHexColor(spec.TextColor)
			if err != nil {
				return nil, err
			}
			format.TextFormat.ForegroundColor = color
		}
	}

	return &sheets.BooleanRule{Condition: condition, Format: format}, nil
}

// GradientPointSpec describes one interpolation point of a gradient rule.
type GradientPointSpec struct {
	Type  string
	Value string
	Color string
}

// BuildGradientRule constructs a gradient conditional-formatting rule
// from min/mid/max point specs. The mid point may be nil.
func BuildGradientRule(minPoint, midPoint, maxPoint *GradientPointSpec) (*sheets.GradientRule, error) {
	if minPoint == nil || maxPoint == nil {
		return nil, fmt.Errorf("gradient rules require min and max points")
	}

	build := func(spec *GradientPointSpec) (*sheets.InterpolationPoint, error) {
		if err := ValidateGradientPointType(spec.Type); err != nil {
			return nil, err
		}
		color, err := ParseHexColor(spec.Color)
		if err != nil {
			return nil, err
		}
		return &sheets.InterpolationPoint{
			Type:  spec.Type,
			Value: spec.Value,
			Color: color,
		}, nil
	}

	rule := &sheets.GradientRule{}
	var err error
	if rule.Minpoint, err = build(minPoint); err != nil {
		return nil, err
	}
	if midPoint != nil {
		if rule.Midpoint, err = build(midPoint); err != nil {
			return nil, err
		}
	}
	if rule.Maxpoint, err = build(maxPoint); err != nil {
		return nil, err
	}
	return rule, nil
}

// SummarizeRule renders a conditional-formatting rule as a one-line
// description for listing.
func SummarizeRule(rule *sheets.ConditionalFormatRule, index int, sheetTitles map[int64]string) string {
	var rangeLabels []string
	for _, gr := range rule.Ranges {
		rangeLabels = append(rangeLabels, GridRangeToA1(gr, sheetTitles))
	}
	if len(rangeLabels) == 0 {
		rangeLabels = []string{"(no range)"}
	}
	onRanges := strings.Join(rangeLabels, ", ")

	if rule.BooleanRule != nil {
		condType := "UNKNOWN"
		var values []string
		if rule.BooleanRule.Condition != nil {
			if rule.BooleanRule.Condition.Type != "" {
				condType = rule.BooleanRule.Condition.Type
			}
			for _, v := range rule.BooleanRule.Condition.Values {
				if v.UserEnteredValue != "" {
					values = append(values, v.UserEnteredValue)
				}
			}
		}
		valueDesc := ""
		if len(values) > 0 {
			valueDesc = " values=[" + strings.Join(values, " ") + "]"
		}

		var fmtParts []string
		if rule.BooleanRule.Format != nil {
			if bg := ColorToHex(rule.BooleanRule.Format.BackgroundColor); bg != "" {
				fmtParts = append(fmtParts, "bg "+bg)
			}
			if tf := rule.BooleanRule.Format.TextFormat; tf != nil {
				if fg := ColorToHex(tf.ForegroundColor); fg != "" {
					fmtParts = append(fmtParts, "text "+fg)
				}
			}
		}
		fmtDesc := "no format"
		if len(fmtParts) > 0 {
			fmtDesc = strings.Join(fmtParts, ", ")
		}
		return fmt.Sprintf("[%d] %s%s -> %s on %s", index, condType, valueDesc, fmtDesc, onRanges)
	}

	if rule.GradientRule != nil {
		var points []string
		for _, point := range []*sheets.InterpolationPoint{
			rule.GradientRule.Minpoint,
			rule.GradientRule.Midpoint,
			rule.GradientRule.Maxpoint,
		} {
			if point == nil {
				continue
			}
			desc := point.Type
			if point.Value != "" {
				desc += ":" + point.Value
			}
			if hex := ColorToHex(point.Color); hex != "" {
				desc += " " + hex
			}
			points = append(points, desc)
		}
		gradientDesc := "gradient"
		if len(points) > 0 {
			gradientDesc = strings.Join(points, " | ")
		}
		return fmt.Sprintf("[%d] gradient -> %s on %s", index, gradientDesc, onRanges)
	}

	return fmt.Sprintf("[%d] (unknown rule) on %s", index, onRanges)
}
