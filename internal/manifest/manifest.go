package manifest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"smartshelf/internal/services"
)

// Columns names the three required manifest headers.
type Columns struct {
	Filename string
	Title    string
	Shelf    string
}

// DefaultColumns matches the headers the bulk import form documents.
var DefaultColumns = Columns{Filename: "filename", Title: "document_title", Shelf: "shelf_id"}

// Row is one validated manifest line.
type Row struct {
	// Number is 1-based, counting the header as row 1.
	Number          int
	Filename        string
	Title           string
	ShelfIdentifier string
}

// Parse reads the manifest at path and validates every data row. A single
// invalid row fails the whole parse.
func Parse(path string, columns Columns) ([]Row, error) {
	table, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return buildRows(table, columns)
}

func readTable(path string) ([][]string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return readDelimited(path, ',')
	case ".tsv":
		return readDelimited(path, '\t')
	case ".xlsx":
		return readWorkbook(path)
	case ".xls":
		return readLegacyWorkbook(path)
	default:
		return nil, &UnsupportedManifestFormatError{Extension: ext}
	}
}

func readDelimited(path string, sep rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var table [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "manifest", "parse", "malformed delimited text", err)
		}
		table = append(table, record)
	}
	return table, nil
}

func buildRows(table [][]string, columns Columns) ([]Row, error) {
	required := []string{columns.Filename, columns.Title, columns.Shelf}
	if len(table) == 0 {
		return nil, &MissingColumnsError{Columns: foldAll(required)}
	}

	fold := cases.Fold()
	header := table[0]
	positions := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		key := fold.String(strings.TrimSpace(name))
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	var missing []string
	indexes := make([]int, len(required))
	for i, col := range required {
		key := fold.String(strings.TrimSpace(col))
		idx, ok := positions[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		indexes[i] = idx
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	rows := make([]Row, 0, len(table)-1)
	for _, record := range table[1:] {
		if blankRecord(record) {
			continue
		}
		number := len(rows) + 2
		values := make([]string, len(indexes))
		var empty []string
		for i, idx := range indexes {
			values[i] = cell(record, idx)
			if values[i] == "" {
				empty = append(empty, required[i])
			}
		}
		if len(empty) > 0 {
			return nil, &InvalidRowError{Row: number, Missing: empty}
		}
		rows = append(rows, Row{
			Number:          number,
			Filename:        values[0],
			Title:           values[1],
			ShelfIdentifier: values[2],
		})
	}
	return rows, nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func blankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func foldAll(values []string) []string {
	fold := cases.Fold()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fold.String(strings.TrimSpace(v))
	}
	return out
}
