package storage

import (
	"fmt"

	"smartshelf/internal/services"
)

// DuplicateFileError reports two files sharing a basename in one archive.
type DuplicateFileError struct {
	Name  string
	Paths []string
}

func (e *DuplicateFileError) Error() string {
	return fmt.Sprintf("duplicate PDF filename detected: %s", e.Name)
}

func (e *DuplicateFileError) Is(target error) bool { return target == services.ErrValidation }

// NotAPdfError rejects a file that does not carry the .pdf extension or, with
// content validation on, does not parse as a PDF.
type NotAPdfError struct {
	Name   string
	Reason string
	Err    error
}

func (e *NotAPdfError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "is not a PDF"
	}
	if e.Err != nil {
		return fmt.Sprintf("file %s %s: %v", e.Name, reason, e.Err)
	}
	return fmt.Sprintf("file %s %s", e.Name, reason)
}

func (e *NotAPdfError) Unwrap() error { return e.Err }

func (e *NotAPdfError) Is(target error) bool { return target == services.ErrValidation }
