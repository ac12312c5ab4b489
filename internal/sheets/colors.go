package sheets

import (
	"fmt"
	"strconv"
	"strings"

	sheets "google.golang.org/api/sheets/v4"
)

// ParseHexColor converts "#RRGGBB" or "RRGGBB" to a Sheets API color
// (components in 0-1).
func ParseHexColor(color string) (*sheets.Color, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if len(trimmed) != 6 {
		return nil, fmt.Errorf("color %q must be in format #RRGGBB or RRGGBB", color)
	}

	var components [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(trimmed[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("color %q is not valid hex", color)
		}
		components[i] = float64(v) / 255
	}

	c := &sheets.Color{
		Red:   components[0],
		Green: components[1],
		Blue:  components[2],
	}
	c.ForceSendFields = []string{"Red", "Green", "Blue"}
	return c, nil
}

// ColorToHex converts a Sheets color back to "#RRGGBB" for display.
func ColorToHex(color *sheets.Color) string {
	if color == nil {
		return ""
	}
	component := func(v float64) uint8 {
		scaled := int(v*255 + 0.5)
		if scaled < 0 {
			return 0
		}
		if scaled > 255 {
			return 255
		}
		return uint8(scaled)
	}
	return fmt.Sprintf("#%02X%02X%02X", component(color.Red), component(color.Green), component(color.Blue))
}
