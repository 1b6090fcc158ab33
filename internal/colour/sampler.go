package colour

import (
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/disintegration/imaging"
)

// Observation is one pixel's RGB intensities as a point in 3-D space.
type Observation [3]float64

// Sample is the observation set produced from an image.
type Sample struct {
	// Observations in row-major order of the (possibly resized) image.
	Observations []Observation

	// Width and Height of the grid the observations were read from.
	Width  int
	Height int

	// SourceWidth and SourceHeight are the dimensions before resizing.
	SourceWidth  int
	SourceHeight int
}

// Total returns the number of sampled pixels.
func (s *Sample) Total() int {
	return len(s.Observations)
}

// Resized reports whether the image was downsampled before sampling.
func (s *Sample) Resized() bool {
	return s.Width != s.SourceWidth || s.Height != s.SourceHeight
}

// Filter names a resampling filter used when downsampling.
type Filter string

const (
	// FilterLanczos is a high quality Lanczos (a=3) filter.
	FilterLanczos Filter = "lanczos"
	// FilterCatmullRom is a sharp cubic filter.
	FilterCatmullRom Filter = "catmullrom"
	// FilterLinear is a bilinear filter.
	FilterLinear Filter = "linear"
	// FilterBox averages the covered source pixels.
	FilterBox Filter = "box"
	// FilterNearest picks the nearest source pixel.
	FilterNearest Filter = "nearest"
)

var resampleFilters = map[Filter]imaging.ResampleFilter{
	FilterLanczos:    imaging.Lanczos,
	FilterCatmullRom: imaging.CatmullRom,
	FilterLinear:     imaging.Linear,
	FilterBox:        imaging.Box,
	FilterNearest:    imaging.NearestNeighbor,
}

// ValidFilters returns the supported filter names.
func ValidFilters() []Filter {
	return []Filter{FilterLanczos, FilterCatmullRom, FilterLinear, FilterBox, FilterNearest}
}

// IsValidFilter checks if the given filter name is supported.
func IsValidFilter(f Filter) bool {
	return slices.Contains(ValidFilters(), f)
}

// TargetSize returns the dimensions an image of width x height is sampled at.
// If either side exceeds maxDimension the image is scaled so its longer side
// equals maxDimension, preserving aspect ratio. A maxDimension <= 0 disables
// downsampling.
func TargetSize(width, height, maxDimension int) (int, int) {
	if maxDimension <= 0 || (width <= maxDimension && height <= maxDimension) {
		return width, height
	}

	scale := float64(maxDimension) / float64(max(width, height))
	w := max(int(math.Round(float64(width)*scale)), 1)
	h := max(int(math.Round(float64(height)*scale)), 1)
	return min(w, maxDimension), min(h, maxDimension)
}

// SamplePixels converts img into an observation set, downsampling it first
// when it exceeds maxDimension. An empty filter selects FilterLanczos.
func SamplePixels(img image.Image, maxDimension int, filter Filter) (*Sample, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if filter == "" {
		filter = FilterLanczos
	}
	resample, ok := resampleFilters[filter]
	if !ok {
		return nil, fmt.Errorf("unknown resampling filter: %s (valid filters: %v)", filter, ValidFilters())
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, fmt.Errorf("%w: image is %dx%d", ErrEmptyInput, srcW, srcH)
	}

	w, h := TargetSize(srcW, srcH, maxDimension)

	// Both paths yield an NRGBA with origin (0,0) so the pixel buffer can be
	// walked directly.
	var nrgba *image.NRGBA
	if w != srcW || h != srcH {
		nrgba = imaging.Resize(img, w, h, resample)
	} else {
		nrgba = imaging.Clone(img)
	}

	sample := &Sample{
		Observations: make([]Observation, 0, w*h),
		Width:        nrgba.Bounds().Dx(),
		Height:       nrgba.Bounds().Dy(),
		SourceWidth:  srcW,
		SourceHeight: srcH,
	}
	for y := 0; y < sample.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+sample.Width*4]
		for x := 0; x < sample.Width; x++ {
			px := row[x*4 : x*4+3]
			sample.Observations = append(sample.Observations, Observation{
				float64(px[0]),
				float64(px[1]),
				float64(px[2]),
			})
		}
	}

	if len(sample.Observations) == 0 {
		return nil, fmt.Errorf("%w: no pixels after resize", ErrEmptyInput)
	}
	return sample, nil
}
