package testsupport

import (
	"context"
	"testing"

	"smartshelf/internal/catalog"
	"smartshelf/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// ShelfOption customizes a seeded shelf.
type ShelfOption func(*catalog.NewShelf)

// WithPin assigns a GPIO pin to the seeded shelf.
func WithPin(pin int) ShelfOption {
	return func(s *catalog.NewShelf) {
		s.GPIOPin = &pin
	}
}

// WithCabinet places the seeded shelf in a cabinet.
func WithCabinet(id int64) ShelfOption {
	return func(s *catalog.NewShelf) {
		s.CabinetID = &id
	}
}

// WithRoom places the seeded shelf in a room.
func WithRoom(id int64) ShelfOption {
	return func(s *catalog.NewShelf) {
		s.RoomID = &id
	}
}

// SeedShelf inserts a shelf and fails the test on error.
func SeedShelf(t testing.TB, store *catalog.Store, name string, opts ...ShelfOption) *catalog.Shelf {
	t.Helper()

	input := catalog.NewShelf{Name: name}
	for _, opt := range opts {
		opt(&input)
	}
	shelf, err := store.CreateShelf(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateShelf %q: %v", name, err)
	}
	return shelf
}
