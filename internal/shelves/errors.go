package shelves

import (
	"fmt"

	"smartshelf/internal/services"
)

// NotFoundError reports an identifier that matches no shelf.
type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("shelf %q not found", e.Identifier)
}

func (e *NotFoundError) Is(target error) bool { return target == services.ErrNotFound }

// MissingPinError reports a shelf without a relay pin.
type MissingPinError struct {
	ShelfID int64
}

func (e *MissingPinError) Error() string {
	return fmt.Sprintf("shelf %d has no GPIO pin assigned", e.ShelfID)
}

func (e *MissingPinError) Is(target error) bool { return target == services.ErrValidation }
