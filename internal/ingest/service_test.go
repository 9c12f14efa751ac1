package ingest_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"smartshelf/internal/catalog"
	"smartshelf/internal/config"
	"smartshelf/internal/ingest"
	"smartshelf/internal/logging"
	"smartshelf/internal/services"
	"smartshelf/internal/testsupport"
)

const manifestHeader = "filename,document_title,shelf_id\n"

type fixture struct {
	cfg     *config.Config
	store   *catalog.Store
	service *ingest.Service
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	return &fixture{
		cfg:     cfg,
		store:   store,
		service: ingest.NewService(cfg, store, logging.NewNop()),
	}
}

func (f *fixture) importZip(t *testing.T, entries ...testsupport.ZipEntry) (*ingest.BatchResult, error) {
	t.Helper()
	return f.service.Import(context.Background(), bytes.NewReader(testsupport.BuildZip(t, entries...)))
}

func (f *fixture) assertNothingPersisted(t *testing.T) {
	t.Helper()
	counts, err := f.store.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Documents != 0 {
		t.Fatalf("expected no documents, found %d", counts.Documents)
	}
	entries, err := os.ReadDir(f.cfg.Paths.UploadsRoot)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read uploads root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected uploads root unchanged, found %d files", len(entries))
	}
}

func (f *fixture) assertScratchRemoved(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.cfg.Paths.TmpRoot)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read tmp root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected scratch directories removed, found %d", len(entries))
	}
}

func pdf(name string) testsupport.ZipEntry {
	return testsupport.ZipEntry{Name: name, Body: testsupport.MinimalPDF(1)}
}

func csvManifest(body string) testsupport.ZipEntry {
	return testsupport.ZipEntry{Name: "manifest.csv", Body: []byte(manifestHeader + body)}
}

func TestImportSingleRow(t *testing.T) {
	f := newFixture(t)
	testsupport.SeedShelf(t, f.store, "First")
	testsupport.SeedShelf(t, f.store, "Second")
	shelf := testsupport.SeedShelf(t, f.store, "Shelf C", testsupport.WithPin(17), testsupport.WithCabinet(2))

	result, err := f.importZip(t, csvManifest("a.pdf,\"Report A\",3\n"), pdf("a.pdf"))
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if result.TotalManifestRows != 1 || result.ImportedCount != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.SkippedRows == nil || len(result.SkippedRows) != 0 {
		t.Fatalf("expected empty skipped rows, got %#v", result.SkippedRows)
	}
	if result.BatchID == "" {
		t.Fatal("expected batch id")
	}

	summary := result.ImportedDocuments[0]
	if summary.ShelfID != shelf.ID || summary.ShelfName != "Shelf C" {
		t.Fatalf("unexpected shelf in summary: %+v", summary)
	}
	if summary.Reference != "A" || summary.Name != "Report A" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if filepath.Dir(summary.StoredPath) != f.cfg.Paths.UploadsRoot {
		t.Fatalf("stored outside uploads root: %s", summary.StoredPath)
	}
	if _, err := os.Stat(summary.StoredPath); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	docs, err := f.store.DocumentsByShelf(context.Background(), shelf.ID)
	if err != nil {
		t.Fatalf("DocumentsByShelf failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	doc := docs[0]
	if doc.Status != catalog.StatusAvailable || doc.ShelfLabel != "Shelf C" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.CabinetID == nil || *doc.CabinetID != 2 {
		t.Fatalf("expected cabinet copied from shelf, got %+v", doc.CabinetID)
	}
	meta, err := doc.Metadata()
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	wantManifest := catalog.ManifestMetadata{RowNumber: 2, DocumentTitle: "Report A", ShelfIdentifier: "3"}
	if diff := cmp.Diff(wantManifest, meta.Manifest); diff != "" {
		t.Fatalf("manifest metadata mismatch (-want +got):\n%s", diff)
	}
	if meta.File.OriginalName != "a.pdf" || meta.File.StoredPath != summary.StoredPath {
		t.Fatalf("unexpected file metadata: %+v", meta.File)
	}
	if meta.File.Source != "bulk_zip_ingest" || meta.BatchID != result.BatchID {
		t.Fatalf("unexpected provenance: %+v", meta)
	}
	f.assertScratchRemoved(t)
}

func TestImportShelfWithoutPinAbortsBatch(t *testing.T) {
	f := newFixture(t)
	testsupport.SeedShelf(t, f.store, "First", testsupport.WithPin(4))
	testsupport.SeedShelf(t, f.store, "Second", testsupport.WithPin(5))
	testsupport.SeedShelf(t, f.store, "No Pin")

	_, err := f.importZip(t,
		csvManifest("b.pdf,B,1\na.pdf,\"Report A\",3\n"),
		pdf("a.pdf"), pdf("b.pdf"),
	)
	var missingPin *ingest.ShelfMissingPinError
	if !errors.As(err, &missingPin) {
		t.Fatalf("expected ShelfMissingPinError, got %v", err)
	}
	if missingPin.Row != 3 || missingPin.Identifier != "3" {
		t.Fatalf("unexpected error detail: %+v", missingPin)
	}
	if !errors.Is(err, ingest.ErrClientInput) {
		t.Fatalf("expected client input marker on %v", err)
	}
	f.assertNothingPersisted(t)
	f.assertScratchRemoved(t)
}

func TestImportMissingFileNamesRow(t *testing.T) {
	f := newFixture(t)
	testsupport.SeedShelf(t, f.store, "Shelf A", testsupport.WithPin(17))

	_, err := f.importZip(t, csvManifest("b.pdf,Report B,1\n"), pdf("a.pdf"))
	var notFound *ingest.FileNotFoundInArchiveError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected FileNotFoundInArchiveError, got %v", err)
	}
	if notFound.Row != 2 || notFound.Filename != "b.pdf" {
		t.Fatalf("unexpected error detail: %+v", notFound)
	}
	f.assertNothingPersisted(t)
}

func TestImportUnknownShelf(t *testing.T) {
	f := newFixture(t)
	testsupport.SeedShelf(t, f.store, "Shelf A", testsupport.WithPin(17))

	_, err := f.importZip(t, csvManifest("a.pdf,A,Shelf Z\n"), pdf("a.pdf"))
	var notFound *ingest.ShelfNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ShelfNotFoundError, got %v", err)
	}
	if notFound.Identifier != "Shelf Z" {
		t.Fatalf("unexpected identifier %q", notFound.Identifier)
	}
}

func TestImportResolvesShelfByName(t *testing.T) {
	f := newFixture(t)
	shelf := testsupport.SeedShelf(t, f.store, "Shelf A", testsupport.WithPin(17))

	result, err := f.importZip(t, csvManifest("a.pdf,A,shelf a\n"), pdf("a.pdf"))
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if result.ImportedDocuments[0].ShelfID != shelf.ID {
		t.Fatalf("expected shelf %d, got %+v", shelf.ID, result.ImportedDocuments[0])
	}
}

func TestImportDisambiguatesReferences(t *testing.T) {
	f := newFixture(t)
	testsupport.SeedShelf(t, f.store, "Shelf A", testsupport.WithPin(17), testsupport.WithCabinet(1))

	result, err := f.importZip(t,
		csvManifest("annual report.pdf,One,1\nAnnual Report.PDF,Two,1\nannual-report.pdf,Three,1\n"),
		pdf("annual report.pdf"), pdf("sub/Annual Report.PDF"), pdf("annual-report.pdf"),
	)
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	var got []string
	for _, doc := range result.ImportedDocuments {
		got = append(got, doc.Reference)
	}
	want := []string{"ANNUAL-REPORT", "ANNUAL-REPORT-01", "ANNUAL-REPORT-02"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("references mismatch (-want +got):\n%s", diff)
	}

	// A second import of the same file continues the sequence.
	again, err := f.importZip(t, csvManifest("annual report.pdf,Four,1\n"), pdf("annual report.pdf"))
	if err != nil {
		t.Fatalf("second Import returned error: %v", err)
	}
	if ref := again.ImportedDocuments[0].Reference; ref != "ANNUAL-REPORT-03" {
		t.Fatalf("expected ANNUAL-REPORT-03, got %s", ref)
	}
}

func TestImportRejectsFileClaimedByTwoRows(t *testing.T) {
	f := newFixture(t)
	testsupport.SeedShelf(t, f.store, "Shelf A", testsupport.WithPin(17))

	_, err := f.importZip(t, csvManifest("a.pdf,One,1\na.pdf,Two,1\n"), pdf("a.pdf"))
	var dup *ingest.DuplicateManifestRowError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateManifestRowError, got %v", err)
	}
	if dup.Row != 3 || dup.FirstRow != 2 || dup.Filename != "a.pdf" {
		t.Fatalf("unexpected error detail: %+v", dup)
	}
	if !errors.Is(err, ingest.ErrClientInput) {
		t.Fatalf("expected client input error, got %v", err)
	}
	if status := services.HTTPStatus(err); status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", status)
	}
	f.assertNothingPersisted(t)
	f.assertScratchRemoved(t)
}

func TestImportLaterRowFailureRemovesRelocatedFiles(t *testing.T) {
	f := newFixture(t)
	testsupport.SeedShelf(t, f.store, "Shelf A", testsupport.WithPin(17))

	_, err := f.importZip(t,
		csvManifest("a.pdf,A,1\nb.pdf,B,1\nmissing.pdf,C,1\n"),
		pdf("a.pdf"), pdf("b.pdf"),
	)
	var notFound *ingest.FileNotFoundInArchiveError
	if !errors.As(err, &notFound) || notFound.Row != 4 {
		t.Fatalf("expected FileNotFoundInArchiveError on row 4, got %v", err)
	}
	f.assertNothingPersisted(t)
	f.assertScratchRemoved(t)
}

func TestImportPreflightFailures(t *testing.T) {
	cases := []struct {
		name    string
		entries []testsupport.ZipEntry
		check   func(error) bool
	}{
		{
			name:    "no pdfs",
			entries: []testsupport.ZipEntry{csvManifest("a.pdf,A,1\n")},
			check:   func(err error) bool { var e *ingest.NoMatchingFilesError; return errors.As(err, &e) },
		},
		{
			name:    "duplicate basenames",
			entries: []testsupport.ZipEntry{csvManifest("a.pdf,A,1\n"), pdf("x/a.pdf"), pdf("y/a.pdf")},
			check:   func(err error) bool { var e *ingest.DuplicateFileError; return errors.As(err, &e) },
		},
		{
			name:    "no manifest",
			entries: []testsupport.ZipEntry{pdf("a.pdf")},
			check:   func(err error) bool { var e *ingest.ManifestNotFoundError; return errors.As(err, &e) },
		},
		{
			name:    "missing columns",
			entries: []testsupport.ZipEntry{{Name: "manifest.csv", Body: []byte("filename\na.pdf\n")}, pdf("a.pdf")},
			check:   func(err error) bool { var e *ingest.MissingColumnsError; return errors.As(err, &e) },
		},
		{
			name:    "invalid row",
			entries: []testsupport.ZipEntry{csvManifest("a.pdf,,1\n"), pdf("a.pdf")},
			check:   func(err error) bool { var e *ingest.InvalidRowError; return errors.As(err, &e) && e.Row == 2 },
		},
		{
			name:    "unsafe entry",
			entries: []testsupport.ZipEntry{csvManifest("a.pdf,A,1\n"), pdf("../a.pdf")},
			check:   func(err error) bool { var e *ingest.UnsafeArchiveError; return errors.As(err, &e) },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			testsupport.SeedShelf(t, f.store, "Shelf A", testsupport.WithPin(17))

			_, err := f.importZip(t, tc.entries...)
			if !tc.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if !errors.Is(err, ingest.ErrClientInput) {
				t.Fatalf("expected client input marker on %v", err)
			}
			f.assertNothingPersisted(t)
			f.assertScratchRemoved(t)
		})
	}
}

func TestImportRejectsNonZipPayload(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Import(context.Background(), bytes.NewReader([]byte("plain text")))
	var invalid *ingest.InvalidArchiveError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidArchiveError, got %v", err)
	}
	f.assertScratchRemoved(t)
}

func TestImportNonPDFExtensionAllowedByConfig(t *testing.T) {
	f := newFixture(t)
	f.cfg.Ingest.AllowedExtensions = []string{".pdf", ".txt"}
	f.service = ingest.NewService(f.cfg, f.store, logging.NewNop())
	testsupport.SeedShelf(t, f.store, "Shelf A", testsupport.WithPin(17))

	_, err := f.importZip(t,
		csvManifest("a.pdf,A,1\nnotes.txt,Notes,1\n"),
		pdf("a.pdf"), testsupport.ZipEntry{Name: "notes.txt", Body: []byte("hi")},
	)
	var notPDF *ingest.NotAPdfError
	if !errors.As(err, &notPDF) {
		t.Fatalf("expected NotAPdfError, got %v", err)
	}
	f.assertNothingPersisted(t)
}

func TestImportWithContentValidationRecordsPageCount(t *testing.T) {
	f := newFixture(t, testsupport.WithPDFValidation(true))
	shelf := testsupport.SeedShelf(t, f.store, "Shelf A", testsupport.WithPin(17))

	_, err := f.importZip(t, csvManifest("a.pdf,A,1\n"),
		testsupport.ZipEntry{Name: "a.pdf", Body: testsupport.MinimalPDF(2)})
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	docs, err := f.store.DocumentsByShelf(context.Background(), shelf.ID)
	if err != nil || len(docs) != 1 {
		t.Fatalf("DocumentsByShelf: %v %d", err, len(docs))
	}
	meta, _ := docs[0].Metadata()
	if meta.File.PageCount != 2 {
		t.Fatalf("expected page count 2, got %d", meta.File.PageCount)
	}
}

func TestImportCancelledContextCleansUp(t *testing.T) {
	f := newFixture(t)
	testsupport.SeedShelf(t, f.store, "Shelf A", testsupport.WithPin(17))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	payload := testsupport.BuildZip(t, csvManifest("a.pdf,A,1\n"), pdf("a.pdf"))
	_, err := f.service.Import(ctx, bytes.NewReader(payload))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	f.assertNothingPersisted(t)
	f.assertScratchRemoved(t)
}
