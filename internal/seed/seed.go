// Package seed derives the random seed used for k-means initialization.
// Every mode except ModeRandom is reproducible, so the same input always
// yields the same palette.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
	"image"
	"math/rand"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Mode determines how the seed is derived.
type Mode string

const (
	// ModeContent hashes the image pixels (default).
	ModeContent Mode = "content"
	// ModeFilepath hashes the absolute input path or URL.
	ModeFilepath Mode = "filepath"
	// ModeManual uses a user-provided value.
	ModeManual Mode = "manual"
	// ModeRandom varies on every run.
	ModeRandom Mode = "random"
)

// Config holds configuration for seed derivation.
type Config struct {
	Mode  Mode
	Value *int64 // only used with ModeManual
}

// ValidModes returns a list of valid seed modes.
func ValidModes() []Mode {
	return []Mode{ModeContent, ModeFilepath, ModeManual, ModeRandom}
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(s)
	if slices.Contains(ValidModes(), mode) {
		return mode, nil
	}
	return "", fmt.Errorf("invalid seed mode: %s (valid: content, filepath, manual, random)", s)
}

// Calculate returns the seed for img loaded from path according to config.
func Calculate(img image.Image, path string, config Config) (int64, error) {
	switch config.Mode {
	case ModeContent:
		if img == nil {
			return 0, fmt.Errorf("image is required for content seed mode")
		}
		return FromContent(img), nil
	case ModeFilepath:
		if path == "" {
			return 0, fmt.Errorf("image path is required for filepath seed mode")
		}
		return FromPath(path), nil
	case ModeManual:
		if config.Value == nil {
			return 0, fmt.Errorf("seed value is required for manual seed mode")
		}
		return *config.Value, nil
	case ModeRandom:
		return Random(), nil
	default:
		return 0, fmt.Errorf("unknown seed mode: %s", config.Mode)
	}
}

// FromContent hashes the image dimensions and a grid of up to ~10k pixels.
func FromContent(img image.Image) int64 {
	bounds := img.Bounds()
	hasher := sha256.New()

	dimBytes := make([]byte, 8)
	binary.LittleEndian.PutUint32(dimBytes[0:4], uint32(bounds.Dx())) // #nosec G115 -- image dimensions are non-negative
	binary.LittleEndian.PutUint32(dimBytes[4:8], uint32(bounds.Dy())) // #nosec G115 -- image dimensions are non-negative
	hasher.Write(dimBytes)

	step := max(bounds.Dx()/100, bounds.Dy()/100, 1)
	pixelBytes := make([]byte, 4)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			pixelBytes[0] = byte(r >> 8)
			pixelBytes[1] = byte(g >> 8)
			pixelBytes[2] = byte(b >> 8)
			pixelBytes[3] = byte(a >> 8)
			hasher.Write(pixelBytes)
		}
	}

	return sum64(hasher)
}

// FromPath hashes the absolute path, or the URL as given.
func FromPath(path string) int64 {
	key := path
	if !isURL(path) {
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
	}

	hasher := sha256.New()
	hasher.Write([]byte(key))
	return sum64(hasher)
}

// Random returns a non-deterministic seed.
func Random() int64 {
	// #nosec G404 -- random mode is intentionally non-deterministic
	return time.Now().UnixNano() + int64(rand.Intn(1000000))
}

func sum64(h hash.Hash) int64 {
	return int64(binary.LittleEndian.Uint64(h.Sum(nil)[:8])) // #nosec G115 -- reinterpreting hash bits
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
