package document

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CSVView is the Spreadsheet implementation over a single CSV file. A CSV
// document has no sheet concept of its own; to let one fingerprint
// definition target xlsx and csv interchangeably it answers to a small set
// of virtual sheet names (SUPPLEMENTED FEATURE, grounded on the Rust
// original's dsl/extract.rs::csv_virtual_sheet_names): "Sheet1", the
// literal "csv", and the file's stem.
type CSVView struct {
	path string
	rows [][]string
}

// OpenCSV reads path fully into memory; CSV documents are expected to be
// modest in size relative to xlsx workbooks.
func OpenCSV(path string) (*CSVView, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", path, err)
	}
	return &CSVView{path: path, rows: rows}, nil
}

func (v *CSVView) Path() string { return v.path }

func (v *CSVView) virtualSheetNames() []string {
	stem := strings.TrimSuffix(filepath.Base(v.path), filepath.Ext(v.path))
	return []string{"Sheet1", "csv", stem}
}

func (v *CSVView) Sheets() []string {
	return v.virtualSheetNames()
}

func (v *CSVView) SheetExists(name string) bool {
	for _, n := range v.virtualSheetNames() {
		if n == name {
			return true
		}
	}
	return false
}

func (v *CSVView) RowCount(sheet string) (int, error) {
	if !v.SheetExists(sheet) {
		return 0, &ErrSheetNotFound{Sheet: sheet}
	}
	count := 0
	for _, row := range v.rows {
		if rowHasContent(row) {
			count++
		}
	}
	return count, nil
}

func (v *CSVView) CellValue(sheet, cellRef string) (string, bool, error) {
	if !v.SheetExists(sheet) {
		return "", false, &ErrSheetNotFound{Sheet: sheet}
	}
	ref, err := ParseCellRef(cellRef)
	if err != nil {
		return "", false, err
	}
	rowIdx := ref.Row - 1
	colIdx := ref.Col - 1
	if rowIdx < 0 || rowIdx >= len(v.rows) {
		return "", false, nil
	}
	row := v.rows[rowIdx]
	if colIdx < 0 || colIdx >= len(row) {
		return "", false, nil
	}
	return row[colIdx], true, nil
}

func (v *CSVView) RangeValues(sheet, rangeRef string) ([][]string, error) {
	if !v.SheetExists(sheet) {
		return nil, &ErrSheetNotFound{Sheet: sheet}
	}
	rng, err := ParseRangeRef(rangeRef)
	if err != nil {
		return nil, err
	}

	values := make([][]string, 0, rng.MaxRow-rng.MinRow+1)
	for row := rng.MinRow; row <= rng.MaxRow; row++ {
		rowVals := make([]string, 0, rng.MaxCol-rng.MinCol+1)
		for col := rng.MinCol; col <= rng.MaxCol; col++ {
			rowIdx := row - 1
			colIdx := col - 1
			var val string
			if rowIdx >= 0 && rowIdx < len(v.rows) {
				r := v.rows[rowIdx]
				if colIdx >= 0 && colIdx < len(r) {
					val = r[colIdx]
				}
			}
			rowVals = append(rowVals, val)
		}
		values = append(values, rowVals)
	}
	return values, nil
}

// HeaderRow returns the first row's cells (the CSV header row), or nil for
// an empty file.
func (v *CSVView) HeaderRow() []string {
	if len(v.rows) == 0 {
		return nil
	}
	return v.rows[0]
}

// CellByColumn returns the cell at rowIndex (0-based, excluding the header
// row) under the named header column (CSV convenience used by the Rust
// original's csv.rs::cell_by_column); column must match a header cell
// exactly, and an unknown column is an error. ok=false means the row or
// cell is absent.
func (v *CSVView) CellByColumn(rowIndex int, column string) (string, bool, error) {
	headers := v.HeaderRow()
	colIdx := -1
	for i, h := range headers {
		if h == column {
			colIdx = i
			break
		}
	}
	if colIdx == -1 {
		return "", false, fmt.Errorf("csv %s: unknown column %q", v.path, column)
	}
	dataRow := rowIndex + 1
	if dataRow >= len(v.rows) {
		return "", false, nil
	}
	row := v.rows[dataRow]
	if colIdx >= len(row) {
		return "", false, nil
	}
	return row[colIdx], true, nil
}
