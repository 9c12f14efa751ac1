// Package ingest runs the bulk PDF import pipeline.
//
// Service.Import persists an uploaded ZIP to a private scratch directory,
// extracts it safely, locates and parses the manifest, indexes the PDFs and
// then processes manifest rows in order inside one catalog transaction. Each
// row resolves its shelf, relocates its PDF into the uploads root, derives a
// unique reference and inserts a document. The first failing row aborts the
// batch; the transaction rolls back and relocated files are removed, so a
// failed import leaves neither rows nor files behind.
//
// Every input problem is a typed error matching ErrClientInput.
package ingest
