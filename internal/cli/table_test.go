package cli

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jmylchreest/pigments/internal/colour"
)

func TestTableAddRow(t *testing.T) {
	table := NewTable([]string{"Name", "Age"})

	table.AddRow([]string{"Alice", "30"})
	table.AddRow([]string{"Bob"})
	table.AddRow([]string{"Charlie", "25", "Extra"})

	want := [][]string{
		{"Alice", "30"},
		{"Bob", ""},
		{"Charlie", "25"},
	}
	if diff := cmp.Diff(want, table.rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestTableRender(t *testing.T) {
	table := NewTable([]string{"Name", "Age"})
	table.SetAlignment(1, AlignRight)
	table.SetAlignment(7, AlignRight)
	table.AddRow([]string{"Alice", "30"})
	table.AddRow([]string{"Bob", "105"})

	want := "" +
		"Name   Age\n" +
		"-----  ---\n" +
		"Alice   30\n" +
		"Bob    105\n"
	if got := table.Render(); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestTableRenderEmpty(t *testing.T) {
	if got := NewTable(nil).Render(); got != "" {
		t.Errorf("Render() = %q, want empty", got)
	}

	got := NewTable([]string{"A", "B"}).Render()
	if want := "A  B\n-  -\n"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestPaletteTable(t *testing.T) {
	palette := &colour.Palette{
		Colours: []colour.Colour{
			{R: 255, G: 0, B: 0, Percentage: 62.5},
			{R: 0, G: 128, B: 255, Percentage: 37.5},
		},
	}

	lines := strings.Split(strings.TrimRight(paletteTable(palette), "\n"), "\n")
	want := []string{
		"#  HEX        R    G    B  COVERAGE",
		"-  -------  ---  ---  ---  --------",
		"1  #FF0000  255    0    0     62.5%",
		"2  #0080FF    0  128  255     37.5%",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("paletteTable() mismatch (-want +got):\n%s", diff)
	}
}
