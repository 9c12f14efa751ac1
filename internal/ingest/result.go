package ingest

import "time"

// BatchResult summarizes a committed import.
type BatchResult struct {
	BatchID           string `json:"batch_id"`
	TotalManifestRows int    `json:"total_manifest_rows"`
	ImportedCount     int    `json:"imported_count"`
	// SkippedRows is always empty: any bad row aborts the batch.
	SkippedRows       []string          `json:"skipped_rows"`
	ImportedDocuments []DocumentSummary `json:"imported_documents"`
}

// DocumentSummary describes one document created by a batch.
type DocumentSummary struct {
	DocumentID int64     `json:"document_id"`
	Reference  string    `json:"reference"`
	Name       string    `json:"name"`
	ShelfID    int64     `json:"shelf_id"`
	ShelfName  string    `json:"shelf_name"`
	StoredPath string    `json:"stored_path"`
	CreatedAt  time.Time `json:"created_at"`
}
