package catalog

import (
	"database/sql"
	"time"
)

const shelfColumns = "id, name, gpio_pin, cabinet_id, room_id, created_at, updated_at"

const documentColumns = "id, reference, name, status, shelf_label, cabinet_id, room_id, shelf_id, metadata_json, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShelf(scanner rowScanner) (*Shelf, error) {
	var (
		shelf      Shelf
		gpioPin    sql.NullInt64
		cabinetID  sql.NullInt64
		roomID     sql.NullInt64
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(
		&shelf.ID,
		&shelf.Name,
		&gpioPin,
		&cabinetID,
		&roomID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	if gpioPin.Valid {
		pin := int(gpioPin.Int64)
		shelf.GPIOPin = &pin
	}
	shelf.CabinetID = nullableInt64Ptr(cabinetID)
	shelf.RoomID = nullableInt64Ptr(roomID)
	shelf.CreatedAt = parseTime(createdRaw)
	shelf.UpdatedAt = parseTime(updatedRaw)
	return &shelf, nil
}

func scanDocument(scanner rowScanner) (*Document, error) {
	var (
		doc        Document
		shelfLabel sql.NullString
		cabinetID  sql.NullInt64
		roomID     sql.NullInt64
		shelfID    sql.NullInt64
		metadata   sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(
		&doc.ID,
		&doc.Reference,
		&doc.Name,
		&doc.Status,
		&shelfLabel,
		&cabinetID,
		&roomID,
		&shelfID,
		&metadata,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	doc.ShelfLabel = shelfLabel.String
	doc.CabinetID = nullableInt64Ptr(cabinetID)
	doc.RoomID = nullableInt64Ptr(roomID)
	doc.ShelfID = nullableInt64Ptr(shelfID)
	doc.MetadataJSON = metadata.String
	doc.CreatedAt = parseTime(createdRaw)
	doc.UpdatedAt = parseTime(updatedRaw)
	return &doc, nil
}

func nullableInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	out := v.Int64
	return &out
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
