package colour

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-hclog"
)

func newTestExtractor(t *testing.T, mutate func(*Config)) *Extractor {
	t.Helper()
	config := DefaultConfig()
	config.Seed = 7
	if mutate != nil {
		mutate(&config)
	}
	extractor, err := NewExtractor(config)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	return extractor
}

// splitImage fills the first splitX columns with left and the rest with right.
func splitImage(w, h, splitX int, left, right color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < splitX {
				img.SetRGBA(x, y, left)
			} else {
				img.SetRGBA(x, y, right)
			}
		}
	}
	return img
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unbounded dimension", mutate: func(c *Config) { c.MaxDimension = 0 }},
		{name: "empty filter", mutate: func(c *Config) { c.Filter = "" }},
		{name: "negative dimension", mutate: func(c *Config) { c.MaxDimension = -1 }, wantErr: true},
		{name: "unknown filter", mutate: func(c *Config) { c.Filter = "sinc" }, wantErr: true},
		{name: "zero iterations", mutate: func(c *Config) { c.MaxIterations = 0 }, wantErr: true},
		{name: "zero tolerance", mutate: func(c *Config) { c.Tolerance = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if _, err := NewExtractor(config); (err != nil) != tt.wantErr {
				t.Errorf("NewExtractor() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtractTwoColourImage(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	img := splitImage(100, 100, 50, red, blue)

	palette, err := newTestExtractor(t, nil).Extract(img, 2)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if palette.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", palette.Len())
	}

	seen := map[RGB]bool{}
	for _, c := range palette.Colours {
		seen[c.RGB()] = true
		if math.Abs(float64(c.Percentage)-50) > 5 {
			t.Errorf("colour %s percentage = %.2f, want ~50", c.Hex(), c.Percentage)
		}
	}
	if !seen[RGB{R: 255}] || !seen[RGB{B: 255}] {
		t.Errorf("expected pure red and pure blue, got %v", palette.Colours)
	}
	if palette.Total != 10000 {
		t.Errorf("Total = %d, want 10000", palette.Total)
	}
}

func TestExtractSingleColourImage(t *testing.T) {
	img := solidImage(10, 10, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	palette, err := newTestExtractor(t, nil).Extract(img, 1)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []Colour{{R: 10, G: 20, B: 30, Percentage: 100}}
	if diff := cmp.Diff(want, palette.Colours); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractRanksByCoverage(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	img := splitImage(100, 10, 30, blue, red)

	palette, err := newTestExtractor(t, nil).Extract(img, 2)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []Colour{
		{R: 255, Percentage: 70},
		{B: 255, Percentage: 30},
	}
	if diff := cmp.Diff(want, palette.Colours); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractDownsampledImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2000, 1000))
	bands := []color.RGBA{
		{R: 230, G: 40, B: 40, A: 255},
		{R: 40, G: 200, B: 60, A: 255},
		{R: 30, G: 30, B: 220, A: 255},
	}
	for y := 0; y < 1000; y++ {
		for x := 0; x < 2000; x++ {
			img.SetRGBA(x, y, bands[x*len(bands)/2000])
		}
	}

	palette, err := newTestExtractor(t, nil).Extract(img, 3)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if palette.Total != 500*250 {
		t.Errorf("Total = %d, want %d (sampled from resized grid)", palette.Total, 500*250)
	}
	if palette.Len() != 3 {
		t.Errorf("Len() = %d, want 3", palette.Len())
	}
	if sum := palette.PercentageSum(); math.Abs(sum-100) > 0.1 {
		t.Errorf("PercentageSum() = %.4f, want 100 +/- 0.1", sum)
	}
}

func TestExtractPercentageSum(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 37, 29))
	for y := 0; y < 29; y++ {
		for x := 0; x < 37; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 9), B: uint8((x + y) * 3), A: 255})
		}
	}

	for _, k := range []int{1, 3, 7, 12} {
		palette, err := newTestExtractor(t, nil).Extract(img, k)
		if err != nil {
			t.Fatalf("Extract(k=%d) error = %v", k, err)
		}
		if palette.Len() != k {
			t.Errorf("Extract(k=%d) returned %d colours", k, palette.Len())
		}
		if sum := palette.PercentageSum(); math.Abs(sum-100) > 0.1 {
			t.Errorf("Extract(k=%d) PercentageSum() = %.4f", k, sum)
		}
		for i := 1; i < palette.Len(); i++ {
			if palette.Colours[i].Percentage > palette.Colours[i-1].Percentage {
				t.Errorf("Extract(k=%d) colours not ranked at %d", k, i)
			}
		}
	}
}

func TestExtractDeterministic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}

	first, err := newTestExtractor(t, nil).Extract(img, 5)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	second, err := newTestExtractor(t, nil).Extract(img, 5)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Extract() not deterministic (-first +second):\n%s", diff)
	}
}

func TestExtractErrors(t *testing.T) {
	small := solidImage(2, 2, color.RGBA{R: 1, A: 255})

	tests := []struct {
		name    string
		img     image.Image
		count   int
		wantErr error
	}{
		{name: "zero colours", img: small, count: 0, wantErr: ErrInvalidClusterCount},
		{name: "negative colours", img: small, count: -3, wantErr: ErrInvalidClusterCount},
		{name: "more colours than pixels", img: small, count: 5, wantErr: ErrInvalidClusterCount},
		{name: "empty image", img: image.NewRGBA(image.Rect(0, 0, 0, 0)), count: 1, wantErr: ErrEmptyInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			palette, err := newTestExtractor(t, nil).Extract(tt.img, tt.count)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Extract() error = %v, want %v", err, tt.wantErr)
			}
			if palette != nil {
				t.Errorf("Extract() returned partial palette %v", palette)
			}
		})
	}
}

func TestExtractLogsSampling(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}

	tests := []struct {
		name         string
		maxDimension int
		wantResized  string
	}{
		{name: "native resolution", maxDimension: 0, wantResized: "resized=false"},
		{name: "downsampled", maxDimension: 10, wantResized: "resized=true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Debug})
			extractor := newTestExtractor(t, func(c *Config) {
				c.MaxDimension = tt.maxDimension
				c.Logger = logger
			})

			if _, err := extractor.Extract(splitImage(40, 20, 20, red, blue), 2); err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if out := buf.String(); !strings.Contains(out, tt.wantResized) {
				t.Errorf("log output missing %q:\n%s", tt.wantResized, out)
			}
		})
	}
}
