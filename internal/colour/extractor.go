package colour

import (
	"fmt"
	"image"
	"runtime"
	"sort"

	"github.com/hashicorp/go-hclog"
)

// Config holds configuration for colour extraction.
type Config struct {
	// MaxDimension bounds the longer image side before sampling. Zero or
	// less samples at native resolution.
	MaxDimension int

	// Filter is the resampling filter used when downsampling.
	Filter Filter

	// MaxIterations caps the k-means rounds.
	MaxIterations int

	// Tolerance is the centroid displacement that counts as converged.
	Tolerance float64

	// Seed drives k-means++ initialization.
	Seed int64

	// Workers bounds assignment parallelism. Zero or less means GOMAXPROCS.
	Workers int

	// Logger receives debug output. Nil disables logging.
	Logger hclog.Logger
}

// DefaultConfig returns the default extraction configuration.
func DefaultConfig() Config {
	return Config{
		MaxDimension:  500,
		Filter:        FilterLanczos,
		MaxIterations: 100,
		Tolerance:     1e-4,
		Workers:       runtime.GOMAXPROCS(0),
	}
}

// Validate validates the extraction configuration.
func (c Config) Validate() error {
	if c.MaxDimension < 0 {
		return fmt.Errorf("max dimension cannot be negative, got %d", c.MaxDimension)
	}
	if c.Filter != "" && !IsValidFilter(c.Filter) {
		return fmt.Errorf("invalid filter: %s (valid filters: %v)", c.Filter, ValidFilters())
	}
	return c.kmeans().Validate()
}

func (c Config) kmeans() KMeansConfig {
	return KMeansConfig{
		MaxIterations: c.MaxIterations,
		Tolerance:     c.Tolerance,
		Seed:          c.Seed,
		Workers:       c.Workers,
		Logger:        c.Logger,
	}
}

// Extractor turns an image into a ranked, percentage-weighted palette.
type Extractor struct {
	config Config
	engine *KMeans
	logger hclog.Logger
}

// NewExtractor creates an Extractor from config.
func NewExtractor(config Config) (*Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	engine, err := NewKMeans(config.kmeans())
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Extractor{
		config: config,
		engine: engine,
		logger: logger,
	}, nil
}

// Extract extracts count dominant colours from img.
// The result has exactly count colours whose percentages sum to 100.
func (e *Extractor) Extract(img image.Image, count int) (*Palette, error) {
	if count < 1 {
		return nil, invalidClusterCount(count, 0)
	}

	sample, err := SamplePixels(img, e.config.MaxDimension, e.config.Filter)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("sampled image",
		"source", fmt.Sprintf("%dx%d", sample.SourceWidth, sample.SourceHeight),
		"sampled", fmt.Sprintf("%dx%d", sample.Width, sample.Height),
		"observations", sample.Total(),
		"resized", sample.Resized(),
	)

	result, err := e.engine.Cluster(sample.Observations, count)
	if err != nil {
		return nil, err
	}

	return newPalette(result, sample.Total()), nil
}

// newPalette ranks clusters by member count, largest first. Equal counts
// keep centroid index order.
func newPalette(result *ClusterResult, total int) *Palette {
	clusters := make([]Cluster, len(result.Clusters))
	copy(clusters, result.Clusters)
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Count > clusters[j].Count
	})

	colours := make([]Colour, len(clusters))
	for i, c := range clusters {
		colours[i] = Colour{
			R:          c.RGB.R,
			G:          c.RGB.G,
			B:          c.RGB.B,
			Percentage: float32(100 * float64(c.Count) / float64(total)),
		}
	}

	return &Palette{
		Colours:    colours,
		Total:      total,
		Iterations: result.Iterations,
		Converged:  result.Converged,
	}
}
