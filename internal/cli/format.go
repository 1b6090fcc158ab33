package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jmylchreest/pigments/internal/colour"
)

var validFormats = []string{"text", "json", "table"}

func isValidFormat(format string) bool {
	return slices.Contains(validFormats, format)
}

// formatPalette formats the palette according to the specified format. The
// result has no trailing newline; stdout output adds one, files are written as is.
func formatPalette(palette *colour.Palette, format string, showPreview bool) (string, error) {
	switch format {
	case "text":
		return palette.StringWithPreview(showPreview), nil
	case "json":
		jsonBytes, err := palette.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(jsonBytes), nil
	case "table":
		return strings.TrimSuffix(paletteTable(palette), "\n"), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: %v)", format, validFormats)
	}
}
