package archive

import (
	"fmt"

	"smartshelf/internal/services"
)

// InvalidArchiveError reports an upload that is not a usable ZIP container.
type InvalidArchiveError struct {
	Reason string
	Err    error
}

func (e *InvalidArchiveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid archive: %s: %v", e.Reason, e.Err)
	}
	return "invalid archive: " + e.Reason
}

func (e *InvalidArchiveError) Unwrap() error { return e.Err }

func (e *InvalidArchiveError) Is(target error) bool { return target == services.ErrValidation }

// UnsafeArchiveError reports an entry that would land outside the extraction
// directory.
type UnsafeArchiveError struct {
	Entry  string
	Reason string
}

func (e *UnsafeArchiveError) Error() string {
	return fmt.Sprintf("unsafe archive entry %q: %s", e.Entry, e.Reason)
}

func (e *UnsafeArchiveError) Is(target error) bool { return target == services.ErrValidation }
