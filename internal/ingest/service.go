package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"smartshelf/internal/archive"
	"smartshelf/internal/catalog"
	"smartshelf/internal/config"
	"smartshelf/internal/logging"
	"smartshelf/internal/manifest"
	"smartshelf/internal/reference"
	"smartshelf/internal/services"
	"smartshelf/internal/staging"
	"smartshelf/internal/storage"
)

// Batch states, logged as the pipeline advances.
const (
	StateReceived       = "received"
	StateExtracted      = "extracted"
	StateManifestParsed = "manifest_parsed"
	StateIndexed        = "indexed"
	StateRowProcessing  = "row_processing"
	StateCompleted      = "completed"
	StateAborted        = "aborted"
)

// Service runs bulk imports. It is safe for concurrent use; each call to
// Import works in its own scratch directory and transaction.
type Service struct {
	cfg       *config.Config
	store     *catalog.Store
	relocator *storage.Relocator
	logger    *slog.Logger
}

// NewService wires an import service from configuration.
func NewService(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		store:     store,
		relocator: storage.NewRelocator(cfg.Paths.UploadsRoot, cfg.Ingest.ValidatePDFContent),
		logger:    logging.NewComponentLogger(logger, "ingest"),
	}
}

// ImportFile imports a ZIP archive from the local filesystem.
func (s *Service) ImportFile(ctx context.Context, path string) (*BatchResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()
	return s.Import(ctx, file)
}

// Import ingests one ZIP payload. Either every manifest row becomes a
// document or nothing changes: on any error the transaction rolls back and
// files already moved into the uploads root are removed again. The scratch
// directory is removed on every path, including cancellation.
func (s *Service) Import(ctx context.Context, payload io.Reader) (result *BatchResult, err error) {
	batchID := uuid.NewString()
	ctx = services.WithBatchID(ctx, batchID)
	logger := logging.WithContext(ctx, s.logger)
	started := time.Now()

	logState(logger, StateReceived)
	defer func() {
		if err != nil {
			logger.Warn("bulk import aborted",
				logging.BatchState(StateAborted),
				logging.Error(err),
				logging.Bool("client_error", services.HTTPStatus(err) < 500),
				logging.Duration("elapsed", time.Since(started)),
				logging.String(logging.FieldEventType, "bulk_import_aborted"),
			)
		}
	}()

	scratch, err := staging.NewScratch(s.cfg.Paths.TmpRoot)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cleanupErr := scratch.Cleanup(); cleanupErr != nil {
			logging.WarnWithContext(logger, "scratch cleanup failed", "scratch_cleanup_failed",
				"check tmp_root permissions; stale directories are removed at daemon start",
				logging.String("path", scratch.Dir), logging.Error(cleanupErr))
		}
	}()

	size, err := scratch.SavePayload(payload)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := archive.Verify(scratch.PayloadPath()); err != nil {
		return nil, err
	}
	stats, err := archive.Extract(scratch.PayloadPath(), scratch.ExtractDir(), archive.Options{
		MaxExtractedBytes: s.cfg.Ingest.MaxExtractedBytes,
	})
	if err != nil {
		return nil, err
	}
	logState(logger, StateExtracted,
		logging.Int64("payload_bytes", size),
		logging.Int("files", stats.Files),
		logging.Int64("extracted_bytes", stats.Bytes),
	)

	manifestPath, err := manifest.Locate(scratch.ExtractDir())
	if err != nil {
		return nil, err
	}
	filenameCol, titleCol, shelfCol := s.cfg.ManifestColumns()
	rows, err := manifest.Parse(manifestPath, manifest.Columns{Filename: filenameCol, Title: titleCol, Shelf: shelfCol})
	if err != nil {
		return nil, err
	}
	logState(logger, StateManifestParsed, logging.Int("rows", len(rows)))

	index, err := storage.BuildIndex(scratch.ExtractDir(), s.cfg.Ingest.AllowedExtensions)
	if err != nil {
		return nil, err
	}
	if len(index) == 0 {
		return nil, &NoMatchingFilesError{Extensions: s.cfg.Ingest.AllowedExtensions}
	}
	logState(logger, StateIndexed, logging.Int("files", len(index)))

	summaries, err := s.processRows(ctx, logger, batchID, rows, index)
	if err != nil {
		return nil, err
	}

	logger.Info("bulk import committed",
		logging.BatchState(StateCompleted),
		logging.Int("total_manifest_rows", len(rows)),
		logging.Int("imported_count", len(summaries)),
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldEventType, "bulk_import_completed"),
	)
	return &BatchResult{
		BatchID:           batchID,
		TotalManifestRows: len(rows),
		ImportedCount:     len(summaries),
		SkippedRows:       []string{},
		ImportedDocuments: summaries,
	}, nil
}

func (s *Service) processRows(ctx context.Context, logger *slog.Logger, batchID string, rows []manifest.Row, index storage.Index) ([]DocumentSummary, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	var relocated []string
	claimed := make(map[string]int, len(rows))
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("batch rollback failed", logging.Error(rbErr))
		}
		for _, path := range relocated {
			if rmErr := s.relocator.Remove(path); rmErr != nil {
				logging.WarnWithContext(logger, "failed to remove relocated file", "relocation_compensation_failed",
					"remove the orphaned file from uploads_root manually",
					logging.String("path", path), logging.Error(rmErr))
			}
		}
	}()

	summaries := make([]DocumentSummary, 0, len(rows))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("import cancelled at row %d: %w", row.Number, err)
		}
		rowLogger := logger.With(logging.Row(row.Number))
		rowLogger.Debug("processing manifest row", logging.BatchState(StateRowProcessing))

		src, ok := index.Lookup(row.Filename)
		if !ok {
			return nil, &FileNotFoundInArchiveError{Row: row.Number, Filename: row.Filename}
		}
		if first, dup := claimed[src]; dup {
			return nil, &DuplicateManifestRowError{Row: row.Number, FirstRow: first, Filename: row.Filename}
		}
		claimed[src] = row.Number

		shelf, err := tx.ResolveShelf(ctx, row.ShelfIdentifier)
		if err != nil {
			return nil, err
		}
		if shelf == nil {
			return nil, &ShelfNotFoundError{Row: row.Number, Identifier: row.ShelfIdentifier}
		}
		if !shelf.HasPin() {
			return nil, &ShelfMissingPinError{Row: row.Number, Identifier: row.ShelfIdentifier}
		}

		stored, err := s.relocator.Relocate(src)
		if err != nil {
			return nil, err
		}
		relocated = append(relocated, stored.Path)

		ref, err := reference.Generate(ctx, tx, row.Filename, shelf.CabinetID)
		if err != nil {
			return nil, err
		}

		doc, err := tx.InsertDocument(ctx, catalog.NewDocument{
			Reference:  ref,
			Name:       row.Title,
			ShelfLabel: shelf.Name,
			CabinetID:  shelf.CabinetID,
			RoomID:     shelf.RoomID,
			ShelfID:    shelf.ID,
			Metadata: catalog.DocumentMetadata{
				File: catalog.FileMetadata{
					OriginalName: row.Filename,
					StoredPath:   stored.Path,
					IngestedAt:   time.Now().UTC().Format(time.RFC3339),
					Source:       s.cfg.Ingest.SourceLabel,
					SizeBytes:    stored.SizeBytes,
					PageCount:    stored.PageCount,
				},
				Manifest: catalog.ManifestMetadata{
					RowNumber:       row.Number,
					DocumentTitle:   row.Title,
					ShelfIdentifier: row.ShelfIdentifier,
				},
				BatchID: batchID,
			},
		})
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, DocumentSummary{
			DocumentID: doc.ID,
			Reference:  doc.Reference,
			Name:       doc.Name,
			ShelfID:    shelf.ID,
			ShelfName:  shelf.Name,
			StoredPath: stored.Path,
			CreatedAt:  doc.CreatedAt,
		})
		rowLogger.Debug("document staged",
			logging.Int64("document_id", doc.ID),
			logging.String("reference", doc.Reference),
			logging.Int64(logging.FieldShelfID, shelf.ID),
		)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return summaries, nil
}

func logState(logger *slog.Logger, state string, attrs ...logging.Attr) {
	attrs = append([]logging.Attr{logging.BatchState(state)}, attrs...)
	logger.Info("bulk import "+state, logging.Args(attrs...)...)
}
