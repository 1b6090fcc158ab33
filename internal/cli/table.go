package cli

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/pigments/internal/colour"
)

// Alignment controls how a column pads its cells.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Table renders rows under a header with columns sized to their widest cell.
type Table struct {
	headers []string
	align   []Alignment
	rows    [][]string
	padding int
}

// NewTable creates a new left-aligned table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers: headers,
		align:   make([]Alignment, len(headers)),
		padding: 2,
	}
}

// SetAlignment sets the alignment of column colIndex. Out of range indexes are ignored.
func (t *Table) SetAlignment(colIndex int, a Alignment) {
	if colIndex >= 0 && colIndex < len(t.align) {
		t.align[colIndex] = a
	}
}

// AddRow adds a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	normalised := make([]string, len(t.headers))
	copy(normalised, row)
	t.rows = append(t.rows, normalised)
}

// Render formats and returns the table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	t.writeLine(&b, t.headers, widths)

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	t.writeLine(&b, sep, widths)

	for _, row := range t.rows {
		t.writeLine(&b, row, widths)
	}
	return b.String()
}

func (t *Table) writeLine(b *strings.Builder, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = pad(cell, widths[i], t.align[i])
	}
	b.WriteString(strings.TrimRight(strings.Join(parts, strings.Repeat(" ", t.padding)), " "))
	b.WriteString("\n")
}

func pad(s string, width int, a Alignment) string {
	if len(s) >= width {
		return s
	}
	fill := strings.Repeat(" ", width-len(s))
	if a == AlignRight {
		return fill + s
	}
	return s + fill
}

// paletteTable lays the palette out as rank, hex, channel and coverage columns.
func paletteTable(palette *colour.Palette) string {
	table := NewTable([]string{"#", "HEX", "R", "G", "B", "COVERAGE"})
	for _, col := range []int{0, 2, 3, 4, 5} {
		table.SetAlignment(col, AlignRight)
	}

	for i, c := range palette.All() {
		table.AddRow([]string{
			fmt.Sprintf("%d", i+1),
			c.Hex(),
			fmt.Sprintf("%d", c.R),
			fmt.Sprintf("%d", c.G),
			fmt.Sprintf("%d", c.B),
			fmt.Sprintf("%.1f%%", c.Percentage),
		})
	}
	return table.Render()
}
