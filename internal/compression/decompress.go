// Package compression transparently decompresses image streams.
package compression

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/pigments/internal/security"
)

// DefaultMaxBytes limits how much decompressed data a single image may expand to.
const DefaultMaxBytes = 256 * 1024 * 1024

// Format identifies the compression wrapped around an image.
type Format string

const (
	// FormatNone is an uncompressed stream.
	FormatNone Format = "none"
	// FormatGzip is a gzip stream (.gz).
	FormatGzip Format = "gzip"
	// FormatXz is an xz stream (.xz).
	FormatXz Format = "xz"
	// FormatBzip2 is a bzip2 stream (.bz2).
	FormatBzip2 Format = "bzip2"
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	bzip2Magic = []byte("BZh")
)

// DetectFormat identifies the compression from the leading bytes of a
// stream, falling back to the file extension of name.
func DetectFormat(name string, header []byte) Format {
	switch {
	case bytes.HasPrefix(header, xzMagic):
		return FormatXz
	case bytes.HasPrefix(header, gzipMagic):
		return FormatGzip
	case bytes.HasPrefix(header, bzip2Magic):
		return FormatBzip2
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xz":
		return FormatXz
	case ".gz", ".gzip":
		return FormatGzip
	case ".bz2":
		return FormatBzip2
	}
	return FormatNone
}

// TrimExtension removes a compression extension from name
// ("photo.png.xz" becomes "photo.png").
func TrimExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".xz", ".gz", ".gzip", ".bz2":
		return name[:len(name)-len(ext)]
	}
	return name
}

// NewReader returns a reader yielding the decompressed contents of r along
// with the detected format. Uncompressed streams are passed through. The
// decompressed size is capped at maxBytes (DefaultMaxBytes when <= 0).
func NewReader(r io.Reader, name string, maxBytes int64) (io.Reader, Format, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	br := bufio.NewReader(r)
	header, err := br.Peek(len(xzMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, FormatNone, fmt.Errorf("failed to read stream header: %w", err)
	}

	format := DetectFormat(name, header)
	var dr io.Reader
	switch format {
	case FormatGzip:
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return nil, format, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		dr = gzr
	case FormatXz:
		xzr, err := xz.NewReader(br)
		if err != nil {
			return nil, format, fmt.Errorf("failed to create xz reader: %w", err)
		}
		dr = xzr
	case FormatBzip2:
		dr = bzip2.NewReader(br)
	default:
		return br, FormatNone, nil
	}

	return security.NewLimitedReader(dr, maxBytes), format, nil
}
