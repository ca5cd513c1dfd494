package dirsql

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// CompressionType represents the compression applied to dumped CSV files
type CompressionType int

const (
	// CompressionNone writes plain files
	CompressionNone CompressionType = iota
	// CompressionGZ writes gzip-compressed files
	CompressionGZ
	// CompressionXZ writes xz-compressed files
	CompressionXZ
	// CompressionZSTD writes zstd-compressed files
	CompressionZSTD
)

// Compression extensions
const (
	extGZ   = ".gz"
	extXZ   = ".xz"
	extZSTD = ".zst"
)

// String returns the compression type name
func (c CompressionType) String() string {
	switch c {
	case CompressionGZ:
		return "gzip"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file extension appended for this compression type
func (c CompressionType) Extension() string {
	switch c {
	case CompressionGZ:
		return extGZ
	case CompressionXZ:
		return extXZ
	case CompressionZSTD:
		return extZSTD
	default:
		return ""
	}
}

// newCompressedWriter wraps w with a compression writer for the given
// type. The returned cleanup must be called to flush and close the
// compressor before the underlying file is closed.
func newCompressedWriter(w io.Writer, c CompressionType) (io.Writer, func() error, error) {
	switch c {
	case CompressionNone:
		return w, func() error { return nil }, nil

	case CompressionGZ:
		gzWriter := gzip.NewWriter(w)
		return gzWriter, gzWriter.Close, nil

	case CompressionXZ:
		xzWriter, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("create xz writer: %w", err)
		}
		return xzWriter, xzWriter.Close, nil

	case CompressionZSTD:
		zstdWriter, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("create zstd writer: %w", err)
		}
		return zstdWriter, zstdWriter.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported compression type: %v", c)
	}
}
