package document

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXView is the Spreadsheet implementation backed by
// github.com/xuri/excelize/v2 — the retrieval pack carries no xlsx reader
// (the Rust original used calamine), so this is an out-of-pack ecosystem
// pick, the standard Go excel library.
type XLSXView struct {
	path string
	f    *excelize.File
}

// OpenXLSX opens an xlsx file lazily; parse failures surface as document
// open failures, which the recognition driver converts into a per-record
// skip (spec §4.5 step 3).
func OpenXLSX(path string) (*XLSXView, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", path, err)
	}
	return &XLSXView{path: path, f: f}, nil
}

func (v *XLSXView) Path() string { return v.path }

func (v *XLSXView) Sheets() []string {
	return v.f.GetSheetList()
}

func (v *XLSXView) SheetExists(name string) bool {
	idx, err := v.f.GetSheetIndex(name)
	return err == nil && idx != -1
}

func (v *XLSXView) CellValue(sheet, cellRef string) (string, bool, error) {
	if !v.SheetExists(sheet) {
		return "", false, &ErrSheetNotFound{Sheet: sheet}
	}
	val, err := v.f.GetCellValue(sheet, cellRef)
	if err != nil {
		return "", false, fmt.Errorf("cell %s!%s: %w", sheet, cellRef, err)
	}
	return val, true, nil
}

func (v *XLSXView) RowCount(sheet string) (int, error) {
	if !v.SheetExists(sheet) {
		return 0, &ErrSheetNotFound{Sheet: sheet}
	}
	rows, err := v.f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("read rows of %s: %w", sheet, err)
	}
	count := 0
	for _, row := range rows {
		if rowHasContent(row) {
			count++
		}
	}
	return count, nil
}

func (v *XLSXView) RangeValues(sheet, rangeRef string) ([][]string, error) {
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
			ref := fmt.Sprintf("%s%d", ColumnLetters(col), row)
			val, err := v.f.GetCellValue(sheet, ref)
			if err != nil {
				return nil, fmt.Errorf("cell %s!%s: %w", sheet, ref, err)
			}
			rowVals = append(rowVals, val)
		}
		values = append(values, rowVals)
	}
	return values, nil
}

// Close releases the underlying file handle.
func (v *XLSXView) Close() error {
	return v.f.Close()
}

func rowHasContent(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return true
		}
	}
	return false
}
