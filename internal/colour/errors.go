// Package colour provides dominant colour extraction using k-means clustering.
package colour

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidClusterCount is returned when k is below 1 or exceeds the number of observations.
	ErrInvalidClusterCount = errors.New("invalid cluster count")

	// ErrEmptyInput is returned when sampling produced no observations.
	ErrEmptyInput = errors.New("no observations to cluster")

	// ErrExtraction matches any *ExtractionError via errors.Is.
	ErrExtraction = errors.New("colour extraction failed")
)

// ExtractionError reports an internal numerical failure during clustering.
//
// The underlying cause can be accessed via errors.Unwrap.
type ExtractionError struct {
	Iteration int
	cause     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s at iteration %d: %v", ErrExtraction, e.Iteration, e.cause)
}

func (e *ExtractionError) Unwrap() error { return e.cause }

// Is reports whether target is ErrExtraction.
func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

func invalidClusterCount(k, observations int) error {
	if k < 1 {
		return fmt.Errorf("%w: k must be at least 1, got %d", ErrInvalidClusterCount, k)
	}
	return fmt.Errorf("%w: k=%d exceeds observation count %d", ErrInvalidClusterCount, k, observations)
}
