package colour

import (
	"fmt"
	"strings"
)

// ANSI escape codes for terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 8
)

// ColourPreview returns an ANSI-coloured block for a colour.
// Width specifies how many characters wide the block should be.
func ColourPreview(c RGB, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	bgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	return bgColour + strings.Repeat(" ", width) + ansiReset
}

// StringWithPreview returns the palette lines, each prefixed with a colour
// block when showPreview is set.
func (p *Palette) StringWithPreview(showPreview bool) string {
	if !showPreview {
		return p.String()
	}

	lines := make([]string, len(p.Colours))
	for i, c := range p.Colours {
		lines[i] = ColourPreview(c.RGB(), defaultWidth) + "  " + c.String()
	}
	return strings.Join(lines, "\n")
}
