package catalog

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatusAvailable is the initial status of every ingested document.
const StatusAvailable = "available"

// Shelf is a physical storage location. Provisioning owns these rows; the
// ingest pipeline only reads them.
type Shelf struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	GPIOPin   *int      `json:"gpio_pin"`
	CabinetID *int64    `json:"cabinet_id"`
	RoomID    *int64    `json:"room_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasPin reports whether the shelf can be unlatched and receive documents.
func (s *Shelf) HasPin() bool {
	return s != nil && s.GPIOPin != nil
}

// NewShelf carries the fields needed to provision a shelf.
type NewShelf struct {
	Name      string
	GPIOPin   *int
	CabinetID *int64
	RoomID    *int64
}

// Document is one ingested PDF.
type Document struct {
	ID           int64     `json:"id"`
	Reference    string    `json:"reference"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	ShelfLabel   string    `json:"shelf_label"`
	CabinetID    *int64    `json:"cabinet_id"`
	RoomID       *int64    `json:"room_id"`
	ShelfID      *int64    `json:"shelf_id"`
	MetadataJSON string    `json:"metadata_json"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Metadata decodes the provenance payload.
func (d *Document) Metadata() (DocumentMetadata, error) {
	var meta DocumentMetadata
	if d == nil || d.MetadataJSON == "" {
		return meta, nil
	}
	if err := json.Unmarshal([]byte(d.MetadataJSON), &meta); err != nil {
		return meta, fmt.Errorf("decode document metadata: %w", err)
	}
	return meta, nil
}

// NewDocument carries the fields written for a manifest row.
type NewDocument struct {
	Reference  string
	Name       string
	ShelfLabel string
	CabinetID  *int64
	RoomID     *int64
	ShelfID    int64
	Metadata   DocumentMetadata
}

// DocumentMetadata records where a document came from.
type DocumentMetadata struct {
	File     FileMetadata     `json:"file"`
	Manifest ManifestMetadata `json:"manifest"`
	BatchID  string           `json:"batch_id,omitempty"`
}

// FileMetadata describes the stored PDF.
type FileMetadata struct {
	OriginalName string `json:"original_name"`
	StoredPath   string `json:"stored_path"`
	IngestedAt   string `json:"ingested_at"`
	Source       string `json:"source"`
	SizeBytes    int64  `json:"size_bytes"`
	PageCount    int    `json:"page_count,omitempty"`
}

// ManifestMetadata captures the manifest row that produced a document.
type ManifestMetadata struct {
	RowNumber       int    `json:"row_number"`
	DocumentTitle   string `json:"document_title"`
	ShelfIdentifier string `json:"shelf_identifier"`
}
