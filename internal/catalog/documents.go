package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// GetDocument fetches a document by id. A missing document returns (nil, nil).
func (s *Store) GetDocument(ctx context.Context, id int64) (*Document, error) {
	return getDocument(ensureContext(ctx), s.db, id)
}

// DocumentsByShelf lists the documents filed on a shelf, oldest first.
func (s *Store) DocumentsByShelf(ctx context.Context, shelfID int64) ([]*Document, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+documentColumns+` FROM documents WHERE shelf_id = ? ORDER BY id`, shelfID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ReferenceExists reports whether a committed document already uses reference.
func (s *Store) ReferenceExists(ctx context.Context, reference string, cabinetID *int64) (bool, error) {
	return referenceExists(ensureContext(ctx), s.db, reference, cabinetID)
}

func getDocument(ctx context.Context, q querier, id int64) (*Document, error) {
	row := q.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func referenceExists(ctx context.Context, q querier, reference string, cabinetID *int64) (bool, error) {
	query := `SELECT 1 FROM documents WHERE reference = ?`
	args := []any{reference}
	if cabinetID != nil {
		query += ` AND cabinet_id = ?`
		args = append(args, *cabinetID)
	}
	query += ` LIMIT 1`

	var found int
	err := q.QueryRowContext(ctx, query, args...).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check reference: %w", err)
	}
	return true, nil
}

func insertDocument(ctx context.Context, q querier, doc NewDocument) (*Document, error) {
	if strings.TrimSpace(doc.Reference) == "" {
		return nil, errors.New("document reference is required")
	}
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	timestamp := formatTime(time.Now())

	res, err := q.ExecContext(
		ctx,
		`INSERT INTO documents (
            reference, name, status, shelf_label, cabinet_id, room_id, shelf_id,
            metadata_json, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.Reference,
		doc.Name,
		StatusAvailable,
		nullableString(doc.ShelfLabel),
		nullableInt64(doc.CabinetID),
		nullableInt64(doc.RoomID),
		doc.ShelfID,
		string(metadataJSON),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return getDocument(ctx, q, id)
}
