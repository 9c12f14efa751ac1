package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// CreateShelf provisions a shelf.
func (s *Store) CreateShelf(ctx context.Context, shelf NewShelf) (*Shelf, error) {
	name := strings.TrimSpace(shelf.Name)
	if name == "" {
		return nil, errors.New("shelf name is required")
	}
	if shelf.GPIOPin != nil && *shelf.GPIOPin < 0 {
		return nil, fmt.Errorf("gpio pin must be non-negative, got %d", *shelf.GPIOPin)
	}
	timestamp := formatTime(time.Now())

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO shelves (name, gpio_pin, cabinet_id, room_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		name,
		nullableInt(shelf.GPIOPin),
		nullableInt64(shelf.CabinetID),
		nullableInt64(shelf.RoomID),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert shelf: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetShelf(ctx, id)
}

// GetShelf fetches a shelf by id. A missing shelf returns (nil, nil).
func (s *Store) GetShelf(ctx context.Context, id int64) (*Shelf, error) {
	return getShelf(ensureContext(ctx), s.db, id)
}

// ListShelves returns every shelf ordered by id.
func (s *Store) ListShelves(ctx context.Context) ([]*Shelf, error) {
	return listShelves(ensureContext(ctx), s.db)
}

// ResolveShelf matches identifier against the registry. All-digit identifiers
// match by id; anything else matches the name case-insensitively, lowest id
// first. No match returns (nil, nil).
func (s *Store) ResolveShelf(ctx context.Context, identifier string) (*Shelf, error) {
	return resolveShelf(ensureContext(ctx), s.db, identifier)
}

func getShelf(ctx context.Context, q querier, id int64) (*Shelf, error) {
	row := q.QueryRowContext(ctx, `SELECT `+shelfColumns+` FROM shelves WHERE id = ?`, id)
	shelf, err := scanShelf(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shelf: %w", err)
	}
	return shelf, nil
}

func listShelves(ctx context.Context, q querier) ([]*Shelf, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+shelfColumns+` FROM shelves ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list shelves: %w", err)
	}
	defer rows.Close()

	var shelves []*Shelf
	for rows.Next() {
		shelf, err := scanShelf(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shelf: %w", err)
		}
		shelves = append(shelves, shelf)
	}
	return shelves, rows.Err()
}

func resolveShelf(ctx context.Context, q querier, identifier string) (*Shelf, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}
	if isDecimal(identifier) {
		id, err := strconv.ParseInt(identifier, 10, 64)
		if err != nil {
			// Out of int64 range; no row can carry that id.
			return nil, nil
		}
		return getShelf(ctx, q, id)
	}

	// SQLite's lower() only folds ASCII, so names are compared in Go.
	shelves, err := listShelves(ctx, q)
	if err != nil {
		return nil, err
	}
	fold := cases.Fold()
	want := fold.String(identifier)
	for _, shelf := range shelves {
		if fold.String(strings.TrimSpace(shelf.Name)) == want {
			return shelf, nil
		}
	}
	return nil, nil
}

func isDecimal(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}
