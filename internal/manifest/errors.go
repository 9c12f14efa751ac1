package manifest

import (
	"fmt"
	"strings"

	"smartshelf/internal/services"
)

// ManifestNotFoundError reports an extracted tree with no tabular file in it.
type ManifestNotFoundError struct{}

func (e *ManifestNotFoundError) Error() string {
	return "manifest file not found in archive"
}

func (e *ManifestNotFoundError) Is(target error) bool { return target == services.ErrValidation }

// UnsupportedManifestFormatError reports a manifest with an unknown extension.
type UnsupportedManifestFormatError struct {
	Extension string
}

func (e *UnsupportedManifestFormatError) Error() string {
	return fmt.Sprintf("unsupported manifest format: %s", e.Extension)
}

func (e *UnsupportedManifestFormatError) Is(target error) bool { return target == services.ErrValidation }

// MissingColumnsError lists every required column absent from the header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "manifest missing required columns: " + strings.Join(e.Columns, ", ")
}

func (e *MissingColumnsError) Is(target error) bool { return target == services.ErrValidation }

// InvalidRowError reports a data row with an empty required value. Row is
// 1-based with the header counted as row 1.
type InvalidRowError struct {
	Row     int
	Missing []string
}

func (e *InvalidRowError) Error() string {
	return fmt.Sprintf("row %d: %s required", e.Row, strings.Join(e.Missing, ", "))
}

func (e *InvalidRowError) Is(target error) bool { return target == services.ErrValidation }
