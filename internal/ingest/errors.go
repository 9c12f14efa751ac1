package ingest

import (
	"fmt"

	"smartshelf/internal/archive"
	"smartshelf/internal/manifest"
	"smartshelf/internal/services"
	"smartshelf/internal/storage"
)

// ErrClientInput matches every error caused by the uploaded archive or its
// manifest rather than by the service itself.
var ErrClientInput = services.ErrValidation

// Errors raised by the packages the pipeline composes, re-exported so callers
// can match the whole taxonomy from one place.
type (
	InvalidArchiveError            = archive.InvalidArchiveError
	UnsafeArchiveError             = archive.UnsafeArchiveError
	ManifestNotFoundError          = manifest.ManifestNotFoundError
	UnsupportedManifestFormatError = manifest.UnsupportedManifestFormatError
	MissingColumnsError            = manifest.MissingColumnsError
	InvalidRowError                = manifest.InvalidRowError
	DuplicateFileError             = storage.DuplicateFileError
	NotAPdfError                   = storage.NotAPdfError
)

// NoMatchingFilesError reports an archive without any allowed file.
type NoMatchingFilesError struct {
	Extensions []string
}

func (e *NoMatchingFilesError) Error() string {
	return fmt.Sprintf("no files matching %v were found inside the zip archive", e.Extensions)
}

func (e *NoMatchingFilesError) Is(target error) bool { return target == ErrClientInput }

// FileNotFoundInArchiveError reports a manifest row naming a file the archive
// does not contain.
type FileNotFoundInArchiveError struct {
	Row      int
	Filename string
}

func (e *FileNotFoundInArchiveError) Error() string {
	return fmt.Sprintf("row %d: file %q not found in archive", e.Row, e.Filename)
}

func (e *FileNotFoundInArchiveError) Is(target error) bool { return target == ErrClientInput }

// ShelfNotFoundError reports a manifest row naming an unknown shelf.
type ShelfNotFoundError struct {
	Row        int
	Identifier string
}

func (e *ShelfNotFoundError) Error() string {
	return fmt.Sprintf("row %d: shelf %q not found", e.Row, e.Identifier)
}

func (e *ShelfNotFoundError) Is(target error) bool { return target == ErrClientInput }

// ShelfMissingPinError reports a manifest row targeting a shelf that has no
// GPIO pin and therefore cannot hold documents.
type ShelfMissingPinError struct {
	Row        int
	Identifier string
}

func (e *ShelfMissingPinError) Error() string {
	return fmt.Sprintf("row %d: shelf %q is missing a GPIO pin assignment", e.Row, e.Identifier)
}

func (e *ShelfMissingPinError) Is(target error) bool { return target == ErrClientInput }

// DuplicateManifestRowError reports a manifest row naming a file an earlier
// row of the same batch already claimed. Each archived file backs at most one
// document.
type DuplicateManifestRowError struct {
	Row      int
	FirstRow int
	Filename string
}

func (e *DuplicateManifestRowError) Error() string {
	return fmt.Sprintf("row %d: file %q is already used by row %d", e.Row, e.Filename, e.FirstRow)
}

func (e *DuplicateManifestRowError) Is(target error) bool { return target == ErrClientInput }
