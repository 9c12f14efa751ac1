package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"smartshelf/internal/catalog"
	"smartshelf/internal/ingest"
	"smartshelf/internal/shelves"
	"smartshelf/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
database_path = %q
uploads_root = %q
tmp_root = %q
lock_dir = %q
log_dir = %q

[hardware]
mode = "mock"
pulse_ms = 1

[logging]
level = "error"
`,
		filepath.Join(base, "data", "smartshelf.db"),
		filepath.Join(base, "uploads"),
		filepath.Join(base, "tmp"),
		filepath.Join(base, "locks"),
		filepath.Join(base, "logs"),
	)
	testsupport.WriteFile(t, configPath, []byte(content))
	return &cliTestEnv{baseDir: base, configPath: configPath}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *cliTestEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("smartshelf %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func decodeJSON[T any](t *testing.T, raw string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return v
}

func TestShelfImportAndOpenFlow(t *testing.T) {
	env := setupCLITestEnv(t)

	added := decodeJSON[catalog.Shelf](t, env.mustRun(t, "shelf", "add", "Shelf A", "--pin", "17", "--cabinet", "4"))
	if added.ID != 1 || added.GPIOPin == nil || *added.GPIOPin != 17 {
		t.Fatalf("unexpected shelf: %+v", added)
	}
	env.mustRun(t, "shelf", "add", "Unwired")

	list := decodeJSON[[]catalog.Shelf](t, env.mustRun(t, "shelf", "list"))
	if len(list) != 2 || list[1].GPIOPin != nil {
		t.Fatalf("unexpected listing: %+v", list)
	}

	zipPath := testsupport.WriteZip(t, filepath.Join(env.baseDir, "batch.zip"),
		testsupport.ZipEntry{Name: "manifest.csv", Body: []byte("filename,document_title,shelf_id\na.pdf,Report A,shelf a\n")},
		testsupport.ZipEntry{Name: "a.pdf", Body: testsupport.MinimalPDF(1)},
	)
	result := decodeJSON[ingest.BatchResult](t, env.mustRun(t, "import", zipPath))
	if result.ImportedCount != 1 || result.ImportedDocuments[0].Reference != "A" {
		t.Fatalf("unexpected import result: %+v", result)
	}

	docs := decodeJSON[[]catalog.Document](t, env.mustRun(t, "shelf", "documents", "1"))
	if len(docs) != 1 || docs[0].Name != "Report A" {
		t.Fatalf("unexpected documents: %+v", docs)
	}

	opened := decodeJSON[shelves.OpenResult](t, env.mustRun(t, "shelf", "open", "Shelf A"))
	if !opened.Triggered || opened.GPIOPin != 17 {
		t.Fatalf("unexpected open result: %+v", opened)
	}

	if _, err := env.run(t, "shelf", "open", "Unwired"); err == nil {
		t.Fatal("expected error opening a shelf without a pin")
	}
	if _, err := env.run(t, "shelf", "documents", "missing"); err == nil {
		t.Fatal("expected error for unknown shelf")
	}
}

func TestImportFailureReportsRow(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "shelf", "add", "Shelf A", "--pin", "17")

	zipPath := testsupport.WriteZip(t, filepath.Join(env.baseDir, "batch.zip"),
		testsupport.ZipEntry{Name: "manifest.csv", Body: []byte("filename,document_title,shelf_id\nb.pdf,Report B,1\n")},
		testsupport.ZipEntry{Name: "a.pdf", Body: testsupport.MinimalPDF(1)},
	)
	_, err := env.run(t, "import", zipPath)
	if err == nil || !strings.Contains(err.Error(), `row 2: file "b.pdf" not found in archive`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.mustRun(t, "config", "validate")
	if !strings.Contains(out, "Configuration valid") || !strings.Contains(out, env.configPath) {
		t.Fatalf("unexpected validate output: %s", out)
	}

	target := filepath.Join(env.baseDir, "generated", "config.toml")
	env.mustRun(t, "config", "init", "--path", target)
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config: %v", err)
	}
	if _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	env.mustRun(t, "config", "init", "--path", target, "--overwrite")
}

func TestRenderTable(t *testing.T) {
	rendered := renderTable(
		[]string{"ID", "Name"},
		[][]string{{"1", "Shelf A"}, {"2"}},
		[]columnAlignment{alignRight, alignLeft},
	)
	for _, want := range []string{"ID", "Name", "Shelf A"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("expected %q in table:\n%s", want, rendered)
		}
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty render for no headers")
	}
}
