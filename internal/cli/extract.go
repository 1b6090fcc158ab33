package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/pigments/internal/colour"
	"github.com/jmylchreest/pigments/internal/image"
	"github.com/jmylchreest/pigments/internal/seed"
)

// extractOptions holds the extract command flags.
type extractOptions struct {
	input         string
	numColours    int
	format        string
	output        string
	maxDimension  int
	maxIterations int
	tolerance     float64
	filter        string
	seedMode      string
	seedValue     int64
	workers       int
	preview       bool
}

func newExtractCmd() *cobra.Command {
	defaults := colour.DefaultConfig()
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the dominant colours from an image",
		Long: `Extract the dominant colours from an image using k-means clustering.

Each colour is reported with the percentage of sampled pixels it covers,
largest first. Images larger than --max-dimension are downsampled with a
Lanczos filter before clustering.

Supported image formats: JPEG, PNG, GIF, WebP, BMP, TIFF
(optionally xz, gzip or bzip2 compressed), from a file or HTTP(S) URL.

Examples:
  # Extract 5 colours (default)
  pigments extract -i wallpaper.jpg

  # Extract 8 colours as JSON into a file
  pigments extract -i wallpaper.png -n 8 -f json -o colours.json

  # Print an aligned table
  pigments extract -i wallpaper.png -f table

  # Reproduce a run with a fixed seed at full resolution
  pigments extract -i photo.jpg --seed 42 --max-dimension 0

  # Show colour swatches in the terminal
  pigments extract -i photo.jpg --preview`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "path or HTTP(S) URL of the input image (required)")
	flags.IntVarP(&opts.numColours, "num-colors", "n", 5, "number of colours to extract")
	flags.StringVarP(&opts.format, "format", "f", "text", "output format (text, json, table)")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	flags.IntVar(&opts.maxDimension, "max-dimension", defaults.MaxDimension, "downsample images whose longer side exceeds this (0 disables)")
	flags.IntVar(&opts.maxIterations, "max-iterations", defaults.MaxIterations, "maximum k-means iterations")
	flags.Float64Var(&opts.tolerance, "tolerance", defaults.Tolerance, "centroid movement below which clustering has converged")
	flags.StringVar(&opts.filter, "filter", string(defaults.Filter), "resampling filter (lanczos, catmullrom, linear, box, nearest)")
	flags.StringVar(&opts.seedMode, "seed-mode", string(seed.ModeContent), "k-means seed mode (content, filepath, manual, random)")
	flags.Int64Var(&opts.seedValue, "seed", 0, "k-means seed value (implies --seed-mode manual)")
	flags.IntVar(&opts.workers, "workers", defaults.Workers, "goroutines used for the assignment step")
	flags.BoolVar(&opts.preview, "preview", false, "show colour swatches in text output when writing to a terminal")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// runExtract executes the extract command.
func runExtract(cmd *cobra.Command, opts *extractOptions) error {
	logger := newLogger(cmd)

	if !isValidFormat(opts.format) {
		return fmt.Errorf("unsupported format: %s (supported: %v)", opts.format, validFormats)
	}

	if err := image.ValidateImagePath(opts.input); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}
	if !image.IsImageFile(opts.input) {
		logger.Debug("unrecognised image extension, relying on content detection", "path", opts.input)
	}

	seedConfig, err := parseSeedConfig(cmd, opts)
	if err != nil {
		return err
	}

	config := colour.Config{
		MaxDimension:  opts.maxDimension,
		Filter:        colour.Filter(opts.filter),
		MaxIterations: opts.maxIterations,
		Tolerance:     opts.tolerance,
		Workers:       opts.workers,
		Logger:        logger,
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("loading image", "path", opts.input)
	img, err := image.NewSmartLoader().Load(cmd.Context(), opts.input)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	bounds := img.Bounds()
	logger.Debug("image loaded", "width", bounds.Dx(), "height", bounds.Dy())

	config.Seed, err = seed.Calculate(img, opts.input, seedConfig)
	if err != nil {
		return fmt.Errorf("failed to calculate seed: %w", err)
	}
	logger.Debug("using seed", "mode", seedConfig.Mode, "seed", config.Seed)

	extractor, err := colour.NewExtractor(config)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	palette, err := extractor.Extract(img, opts.numColours)
	if err != nil {
		return fmt.Errorf("failed to extract colours: %w", err)
	}
	logger.Info("extracted colours",
		"count", palette.Len(),
		"pixels", palette.Total,
		"iterations", palette.Iterations,
		"converged", palette.Converged,
		"coverage", fmt.Sprintf("%.1f%%", palette.PercentageSum()),
	)

	if opts.output != "" {
		output, err := formatPalette(palette, opts.format, false)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.output, []byte(output), 0o644); err != nil { // #nosec G306 - output is a user-facing result file
			return fmt.Errorf("failed to write output file: %w", err)
		}
		logger.Info("results written", "path", opts.output)
		return nil
	}

	out := cmd.OutOrStdout()
	output, err := formatPalette(palette, opts.format, opts.preview && isTerminal(out))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, output)
	return err
}

// parseSeedConfig resolves the seed flags. Passing --seed alone selects manual mode.
func parseSeedConfig(cmd *cobra.Command, opts *extractOptions) (seed.Config, error) {
	mode, err := seed.ParseMode(opts.seedMode)
	if err != nil {
		return seed.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("seed") && !flags.Changed("seed-mode") {
		mode = seed.ModeManual
	}

	config := seed.Config{Mode: mode}
	if flags.Changed("seed") {
		config.Value = &opts.seedValue
	}
	return config, nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
