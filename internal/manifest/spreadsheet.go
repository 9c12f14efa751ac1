package manifest

import (
	"regexp"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"smartshelf/internal/services"
)

// integralFloat matches numeric cells stored as floats, e.g. a shelf id "3.0".
var integralFloat = regexp.MustCompile(`^-?\d+\.0+$`)

// readWorkbook loads the first sheet of an .xlsx manifest.
func readWorkbook(path string) ([][]string, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "manifest", "open workbook", "unreadable xlsx file", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "manifest", "read sheet", sheets[0], err)
	}
	return normalizeCells(rows), nil
}

// readLegacyWorkbook loads the first sheet of a BIFF .xls manifest.
func readLegacyWorkbook(path string) ([][]string, error) {
	book, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "manifest", "open workbook", "unreadable xls file", err)
	}
	if book.NumSheets() == 0 {
		return nil, nil
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		record := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			record[c] = row.Col(c)
		}
		rows = append(rows, record)
	}
	return normalizeCells(rows), nil
}

func normalizeCells(rows [][]string) [][]string {
	for _, row := range rows {
		for i, value := range row {
			trimmed := strings.TrimSpace(value)
			if integralFloat.MatchString(trimmed) {
				whole, _, _ := strings.Cut(trimmed, ".")
				row[i] = whole
			}
		}
	}
	return rows
}
