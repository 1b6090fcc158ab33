package colour

import (
	"encoding/json"
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB represents a color in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the RGB color as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return rgb.colorful().Hex()
}

func (rgb RGB) colorful() colorful.Color {
	return colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}
}

// Colour is one extracted colour and the share of sampled pixels it covers.
type Colour struct {
	R          uint8   `json:"r"`
	G          uint8   `json:"g"`
	B          uint8   `json:"b"`
	Percentage float32 `json:"percentage"`
}

// RGB returns the colour channels without the percentage.
func (c Colour) RGB() RGB {
	return RGB{R: c.R, G: c.G, B: c.B}
}

// Hex returns the colour as an upper-case hex string (e.g., "#1A2B3C").
func (c Colour) Hex() string {
	return strings.ToUpper(c.RGB().Hex())
}

// String returns the colour in the form "Color: #RRGGBB (RGB: r, g, b) - p.p%".
func (c Colour) String() string {
	return fmt.Sprintf("Color: %s (RGB: %d, %d, %d) - %.1f%%", c.Hex(), c.R, c.G, c.B, c.Percentage)
}

// Palette is the ranked result of one extraction.
type Palette struct {
	// Colours ordered by coverage, largest first.
	Colours []Colour

	// Total is the number of sampled pixels the percentages refer to.
	Total int

	// Iterations and Converged describe the clustering run.
	Iterations int
	Converged  bool
}

// Len returns the number of colours in the palette.
func (p *Palette) Len() int {
	return len(p.Colours)
}

// All returns an iterator over all colours in the palette.
func (p *Palette) All() func(func(int, Colour) bool) {
	return func(yield func(int, Colour) bool) {
		for i, c := range p.Colours {
			if !yield(i, c) {
				return
			}
		}
	}
}

// PercentageSum returns the sum of all colour percentages.
func (p *Palette) PercentageSum() float64 {
	sum := 0.0
	for _, c := range p.Colours {
		sum += float64(c.Percentage)
	}
	return sum
}

// ToJSON converts the palette to an indented JSON array of colour records.
func (p *Palette) ToJSON() ([]byte, error) {
	colours := p.Colours
	if colours == nil {
		colours = []Colour{}
	}
	return json.MarshalIndent(colours, "", "  ")
}

// String returns one line per colour.
func (p *Palette) String() string {
	lines := make([]string, len(p.Colours))
	for i, c := range p.Colours {
		lines[i] = c.String()
	}
	return strings.Join(lines, "\n")
}
