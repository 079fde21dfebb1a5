package parser

import (
	"errors"
	"fmt"
	"mime"
	"strings"
)

// MaxFileSize is the largest upload accepted for parsing (10 MiB).
const MaxFileSize int64 = 10 * 1024 * 1024

const csvMediaType = "text/csv"

var (
	// ErrNotCSV indicates the file is neither typed as text/csv nor named *.csv.
	ErrNotCSV = errors.New("file is not csv")
	// ErrTooLarge indicates the file exceeds MaxFileSize.
	ErrTooLarge = errors.New("file too large")
)

// CanParse reports whether a file is acceptable CSV input, either by its
// declared media type or by its extension.
func CanParse(filename, mimeType string) bool {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil && mt == csvMediaType {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".csv")
}

// ValidateFile checks type and size before any bytes are read.
func ValidateFile(filename, mimeType string, size int64) error {
	if !CanParse(filename, mimeType) {
		return fmt.Errorf("%w: %s", ErrNotCSV, filename)
	}
	if size > MaxFileSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, size, MaxFileSize)
	}
	return nil
}
