package shelves

import (
	"context"
	"log/slog"

	"smartshelf/internal/catalog"
	"smartshelf/internal/hardware"
	"smartshelf/internal/logging"
	"smartshelf/internal/services"
)

// OpenResult is the outcome reported to callers of Open.
type OpenResult struct {
	ShelfID   int64  `json:"shelf_id"`
	GPIOPin   int    `json:"gpio_pin"`
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// Opener resolves shelves and pulses their pins.
type Opener struct {
	store   *catalog.Store
	trigger hardware.Trigger
	logger  *slog.Logger
}

// NewOpener wires an opener around an already selected trigger.
func NewOpener(store *catalog.Store, trigger hardware.Trigger, logger *slog.Logger) *Opener {
	return &Opener{
		store:   store,
		trigger: trigger,
		logger:  logging.NewComponentLogger(logger, "shelves"),
	}
}

// Open resolves identifier (numeric id or case-insensitive name) and pulses
// the shelf's pin. A driver failure still returns the populated result with
// Triggered false alongside the error.
func (o *Opener) Open(ctx context.Context, identifier string) (OpenResult, error) {
	shelf, err := o.store.ResolveShelf(ctx, identifier)
	if err != nil {
		return OpenResult{}, err
	}
	if shelf == nil {
		return OpenResult{}, &NotFoundError{Identifier: identifier}
	}
	if !shelf.HasPin() {
		return OpenResult{ShelfID: shelf.ID}, &MissingPinError{ShelfID: shelf.ID}
	}

	ctx = services.WithShelfID(ctx, shelf.ID)
	logger := logging.WithContext(ctx, o.logger)

	pin := *shelf.GPIOPin
	res, err := o.trigger.Trigger(ctx, pin)
	result := OpenResult{
		ShelfID:   shelf.ID,
		GPIOPin:   pin,
		Triggered: res.Triggered,
		Message:   res.Message,
	}
	if err != nil {
		result.Triggered = false
		if result.Message == "" {
			result.Message = err.Error()
		}
		logger.Warn("shelf open failed",
			logging.Pin(pin),
			logging.Error(err),
			logging.String(logging.FieldEventType, "shelf_open_failed"),
		)
		return result, err
	}
	logger.Info("shelf opened", logging.Pin(pin), logging.String("shelf_name", shelf.Name))
	return result, nil
}
