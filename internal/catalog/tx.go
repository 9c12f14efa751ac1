package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Tx is a batch transaction. Reads through a Tx see documents inserted
// earlier in the same Tx.
type Tx struct {
	tx *sql.Tx
}

// Begin starts a transaction holding the database write lock until Commit or
// Rollback.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	ctx = ensureContext(ctx)
	var tx *sql.Tx
	err := retryOnBusy(ctx, func() error {
		var beginErr error
		tx, beginErr = s.db.BeginTx(ctx, nil)
		return beginErr
	})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// ResolveShelf resolves a shelf identifier inside the transaction.
func (t *Tx) ResolveShelf(ctx context.Context, identifier string) (*Shelf, error) {
	return resolveShelf(ensureContext(ctx), t.tx, identifier)
}

// ReferenceExists checks reference uniqueness, including uncommitted rows in
// this transaction.
func (t *Tx) ReferenceExists(ctx context.Context, reference string, cabinetID *int64) (bool, error) {
	return referenceExists(ensureContext(ctx), t.tx, reference, cabinetID)
}

// InsertDocument writes a document with status "available".
func (t *Tx) InsertDocument(ctx context.Context, doc NewDocument) (*Document, error) {
	return insertDocument(ensureContext(ctx), t.tx, doc)
}

// Commit makes the batch visible.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the batch. Calling it after Commit is a no-op.
func (t *Tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}
