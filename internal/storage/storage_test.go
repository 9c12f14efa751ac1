package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"smartshelf/internal/services"
	"smartshelf/internal/storage"
	"smartshelf/internal/testsupport"
)

var storedNamePattern = regexp.MustCompile(`^[0-9a-f]{32}\.pdf$`)

func TestBuildIndexCollectsNestedPDFs(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.pdf"), []byte("a"))
	testsupport.WriteFile(t, filepath.Join(root, "sub", "B.PDF"), []byte("b"))
	testsupport.WriteFile(t, filepath.Join(root, "manifest.csv"), []byte("m"))
	testsupport.WriteFile(t, filepath.Join(root, "__MACOSX", "a.pdf"), []byte("junk"))

	index, err := storage.BuildIndex(root, []string{".pdf"})
	if err != nil {
		t.Fatalf("BuildIndex returned error: %v", err)
	}
	if len(index) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(index), index)
	}
	if path, ok := index.Lookup("B.PDF"); !ok || path != filepath.Join(root, "sub", "B.PDF") {
		t.Fatalf("unexpected lookup result %q %v", path, ok)
	}
}

func TestBuildIndexRejectsDuplicateBasenames(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "one", "report.pdf"), []byte("1"))
	testsupport.WriteFile(t, filepath.Join(root, "two", "report.pdf"), []byte("2"))

	_, err := storage.BuildIndex(root, []string{".pdf"})
	var dup *storage.DuplicateFileError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateFileError, got %v", err)
	}
	if dup.Name != "report.pdf" {
		t.Fatalf("unexpected duplicate name %q", dup.Name)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker on %v", err)
	}
}

func TestBuildIndexEmptyTree(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "manifest.csv"), []byte("m"))

	index, err := storage.BuildIndex(root, []string{"pdf"})
	if err != nil {
		t.Fatalf("BuildIndex returned error: %v", err)
	}
	if len(index) != 0 {
		t.Fatalf("expected empty index, got %v", index)
	}
}

func TestRelocateMovesUnderRandomName(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "scratch", "a.pdf")
	testsupport.WriteFile(t, src, []byte("pdf-bytes"))
	uploads := filepath.Join(base, "uploads", "documents")

	relocator := storage.NewRelocator(uploads, false)
	stored, err := relocator.Relocate(src)
	if err != nil {
		t.Fatalf("Relocate returned error: %v", err)
	}
	if filepath.Dir(stored.Path) != uploads {
		t.Fatalf("stored outside uploads root: %s", stored.Path)
	}
	if !storedNamePattern.MatchString(filepath.Base(stored.Path)) {
		t.Fatalf("unexpected stored name %s", filepath.Base(stored.Path))
	}
	if stored.SizeBytes != int64(len("pdf-bytes")) {
		t.Fatalf("unexpected size %d", stored.SizeBytes)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source to be moved, stat err=%v", err)
	}

	if err := relocator.Remove(stored.Path); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if err := relocator.Remove(stored.Path); err != nil {
		t.Fatalf("Remove of missing file returned error: %v", err)
	}
}

func TestRelocateRejectsNonPDF(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "notes.txt")
	testsupport.WriteFile(t, src, []byte("text"))

	_, err := storage.NewRelocator(filepath.Join(base, "uploads"), false).Relocate(src)
	var notPDF *storage.NotAPdfError
	if !errors.As(err, &notPDF) {
		t.Fatalf("expected NotAPdfError, got %v", err)
	}
	if _, statErr := os.Stat(src); statErr != nil {
		t.Fatalf("rejected source should stay in place: %v", statErr)
	}
}

func TestRelocateValidatesContent(t *testing.T) {
	base := t.TempDir()
	uploads := filepath.Join(base, "uploads")
	relocator := storage.NewRelocator(uploads, true)

	good := filepath.Join(base, "good.pdf")
	testsupport.WriteFile(t, good, testsupport.MinimalPDF(3))
	stored, err := relocator.Relocate(good)
	if err != nil {
		t.Fatalf("Relocate returned error for valid PDF: %v", err)
	}
	if stored.PageCount != 3 {
		t.Fatalf("expected 3 pages, got %d", stored.PageCount)
	}

	bad := filepath.Join(base, "bad.pdf")
	testsupport.WriteFile(t, bad, []byte("not really a pdf"))
	_, err = relocator.Relocate(bad)
	var notPDF *storage.NotAPdfError
	if !errors.As(err, &notPDF) {
		t.Fatalf("expected NotAPdfError for invalid content, got %v", err)
	}
}
