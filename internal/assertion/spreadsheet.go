package assertion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jackzampolin/fingerprint/internal/document"
)

func evalFilenameRegex(params map[string]interface{}, path string) (bool, string, any) {
	pattern, err := requireString(params, "pattern")
	if err != nil {
		return false, err.Error(), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid pattern: %v", err), nil
	}
	base := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		base = path[idx+1:]
	}
	if re.MatchString(base) {
		return true, fmt.Sprintf("filename %q matches %q", base, pattern), nil
	}
	return false, fmt.Sprintf("filename %q does not match %q", base, pattern), nil
}

func evalSheetExists(params map[string]interface{}, sheet document.Spreadsheet, env *Env) (bool, string, any) {
	name, err := requireString(params, "sheet")
	if err != nil {
		return false, err.Error(), nil
	}
	resolved, err := env.ResolveSheet(name)
	if err != nil {
		return false, err.Error(), nil
	}
	if sheet.SheetExists(resolved) {
		return true, fmt.Sprintf("sheet %q found", resolved), nil
	}
	return false, fmt.Sprintf("sheet %q not found", resolved), map[string]any{"available_sheets": sheet.Sheets()}
}

func evalSheetNameRegex(params map[string]interface{}, sheet document.Spreadsheet, env *Env) (bool, string, any) {
	pattern, err := requireString(params, "pattern")
	if err != nil {
		return false, err.Error(), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid pattern: %v", err), nil
	}
	for _, name := range sheet.Sheets() {
		if re.MatchString(name) {
			if bind, ok := getString(params, "bind"); ok && bind != "" {
				env.Bind(bind, name)
			}
			return true, fmt.Sprintf("sheet %q matches %q", name, pattern), nil
		}
	}
	return false, fmt.Sprintf("no sheet matches %q", pattern), map[string]any{"available_sheets": sheet.Sheets()}
}

func evalCellEq(params map[string]interface{}, sheet document.Spreadsheet, env *Env) (bool, string, any) {
	sheetName, cellRef, err := sheetAndCell(params, env)
	if err != nil {
		return false, err.Error(), nil
	}
	want, err := requireString(params, "value")
	if err != nil {
		return false, err.Error(), nil
	}
	got, ok, err := sheet.CellValue(sheetName, cellRef)
	if err != nil {
		return false, err.Error(), nil
	}
	if !ok {
		return false, fmt.Sprintf("%s!%s does not exist", sheetName, cellRef), nil
	}
	if got == want {
		return true, fmt.Sprintf("%s!%s == %q", sheetName, cellRef, want), nil
	}
	return false, fmt.Sprintf("%s!%s = %q, want %q", sheetName, cellRef, got, want), map[string]any{"actual": got}
}

func evalCellRegex(params map[string]interface{}, sheet document.Spreadsheet, env *Env) (bool, string, any) {
	sheetName, cellRef, err := sheetAndCell(params, env)
	if err != nil {
		return false, err.Error(), nil
	}
	pattern, err := requireString(params, "pattern")
	if err != nil {
		return false, err.Error(), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid pattern: %v", err), nil
	}
	got, ok, err := sheet.CellValue(sheetName, cellRef)
	if err != nil {
		return false, err.Error(), nil
	}
	if !ok {
		return false, fmt.Sprintf("%s!%s does not exist", sheetName, cellRef), nil
	}
	if re.MatchString(got) {
		return true, fmt.Sprintf("%s!%s matches %q", sheetName, cellRef, pattern), nil
	}
	return false, fmt.Sprintf("%s!%s = %q does not match %q", sheetName, cellRef, got, pattern), map[string]any{"actual": got}
}

func evalRangeNonNull(params map[string]interface{}, sheet document.Spreadsheet, env *Env) (bool, string, any) {
	sheetName, rangeRef, err := sheetAndRange(params, env)
	if err != nil {
		return false, err.Error(), nil
	}
	rows, err := sheet.RangeValues(sheetName, rangeRef)
	if err != nil {
		return false, err.Error(), nil
	}
	empty := 0
	total := 0
	for _, row := range rows {
		for _, cell := range row {
			total++
			if strings.TrimSpace(cell) == "" {
				empty++
			}
		}
	}
	if empty == 0 {
		return true, fmt.Sprintf("%s!%s fully populated", sheetName, rangeRef), nil
	}
	return false, fmt.Sprintf("%s!%s has %d empty cell(s) of %d", sheetName, rangeRef, empty, total), nil
}

func evalRangePopulated(params map[string]interface{}, sheet document.Spreadsheet, env *Env) (bool, string, any) {
	sheetName, rangeRef, err := sheetAndRange(params, env)
	if err != nil {
		return false, err.Error(), nil
	}
	minPct, _ := getFloat(params, "min_pct")
	rows, err := sheet.RangeValues(sheetName, rangeRef)
	if err != nil {
		return false, err.Error(), nil
	}
	nonEmpty, total := 0, 0
	for _, row := range rows {
		for _, cell := range row {
			total++
			if strings.TrimSpace(cell) != "" {
				nonEmpty++
			}
		}
	}
	pct := 0.0
	if total > 0 {
		pct = float64(nonEmpty) / float64(total) * 100
	}
	if pct >= minPct {
		return true, fmt.Sprintf("%s!%s is %.1f%% populated (>= %.1f%%)", sheetName, rangeRef, pct, minPct), nil
	}
	return false, fmt.Sprintf("%s!%s is %.1f%% populated (< %.1f%%)", sheetName, rangeRef, pct, minPct), nil
}

func evalSheetMinRows(params map[string]interface{}, sheet document.Spreadsheet, env *Env) (bool, string, any) {
	sheetName, err := sheetOnly(params, env)
	if err != nil {
		return false, err.Error(), nil
	}
	min := getInt(params, "min", 0)
	count, err := sheet.RowCount(sheetName)
	if err != nil {
		return false, err.Error(), nil
	}
	if count >= min {
		return true, fmt.Sprintf("%s has %d rows (>= %d)", sheetName, count, min), nil
	}
	return false, fmt.Sprintf("%s has %d rows (< %d)", sheetName, count, min), nil
}

func evalSumEq(params map[string]interface{}, sheet document.Spreadsheet, env *Env) (bool, string, any) {
	sheetName, rangeRef, err := sheetAndRange(params, env)
	if err != nil {
		return false, err.Error(), nil
	}
	tolerance, _ := getFloat(params, "tolerance")

	rows, err := sheet.RangeValues(sheetName, rangeRef)
	if err != nil {
		return false, err.Error(), nil
	}
	var sum float64
	for _, row := range rows {
		for _, cell := range row {
			if v, ok := parseNumeric(cell); ok {
				sum += v
			}
		}
	}

	var target float64
	if cellRef, ok := getString(params, "equals_cell"); ok {
		val, exists, cerr := sheet.CellValue(sheetName, cellRef)
		if cerr != nil || !exists {
			return false, fmt.Sprintf("equals_cell %s!%s unavailable", sheetName, cellRef), nil
		}
		v, ok := parseNumeric(val)
		if !ok {
			return false, fmt.Sprintf("equals_cell %s!%s is not numeric", sheetName, cellRef), nil
		}
		target = v
	} else if lit, ok := getFloat(params, "equals"); ok {
		target = lit
	} else {
		return false, "sum_eq requires equals or equals_cell", nil
	}

	if withinTolerance(sum, target, tolerance) {
		return true, fmt.Sprintf("sum(%s!%s) = %v within %v of %v", sheetName, rangeRef, sum, tolerance, target), nil
	}
	return false, fmt.Sprintf("sum(%s!%s) = %v, want %v +/- %v", sheetName, rangeRef, sum, target, tolerance), map[string]any{"sum": sum, "target": target}
}

func evalWithinTolerance(params map[string]interface{}, sheet document.Spreadsheet, env *Env) (bool, string, any) {
	sheetName, cellRef, err := sheetAndCell(params, env)
	if err != nil {
		return false, err.Error(), nil
	}
	expected, err := requireFloat(params, "expected")
	if err != nil {
		return false, err.Error(), nil
	}
	tolerance, _ := getFloat(params, "tolerance")

	raw, ok, cerr := sheet.CellValue(sheetName, cellRef)
	if cerr != nil || !ok {
		return false, fmt.Sprintf("%s!%s unavailable", sheetName, cellRef), nil
	}
	actual, ok := parseNumeric(raw)
	if !ok {
		return false, fmt.Sprintf("%s!%s = %q is not numeric", sheetName, cellRef, raw), nil
	}
	if withinTolerance(actual, expected, tolerance) {
		return true, fmt.Sprintf("%s!%s = %v within %v of %v", sheetName, cellRef, actual, tolerance, expected), nil
	}
	return false, fmt.Sprintf("%s!%s = %v, want %v +/- %v", sheetName, cellRef, actual, expected, tolerance), map[string]any{"actual": actual}
}

func evalColumnSearch(params map[string]interface{}, sheet document.Spreadsheet, env *Env) (bool, string, any) {
	sheetName, rangeRef, err := sheetAndRange(params, env)
	if err != nil {
		return false, err.Error(), nil
	}
	pattern, err := requireString(params, "pattern")
	if err != nil {
		return false, err.Error(), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid pattern: %v", err), nil
	}
	rows, err := sheet.RangeValues(sheetName, rangeRef)
	if err != nil {
		return false, err.Error(), nil
	}
	for i, row := range rows {
		for _, cell := range row {
			if re.MatchString(cell) {
				return true, fmt.Sprintf("found %q at row offset %d", pattern, i), map[string]any{"row_offset": i}
			}
		}
	}
	return false, fmt.Sprintf("no cell in %s!%s matches %q", sheetName, rangeRef, pattern), nil
}

func evalHeaderRowMatch(params map[string]interface{}, sheet document.Spreadsheet, env *Env) (bool, string, any) {
	sheetName, rangeRef, err := sheetAndRange(params, env)
	if err != nil {
		return false, err.Error(), nil
	}
	minMatches := getInt(params, "min_matches", 1)
	columnSpecs := getMapSlice(params, "columns")

	rows, err := sheet.RangeValues(sheetName, rangeRef)
	if err != nil {
		return false, err.Error(), nil
	}

	for rowIdx, row := range rows {
		matchedColumns := make(map[int]bool)
		for _, spec := range columnSpecs {
			pattern, _ := spec["pattern"].(string)
			if pattern == "" {
				continue
			}
			re, rerr := regexp.Compile(pattern)
			if rerr != nil {
				continue
			}
			for colIdx, cell := range row {
				if matchedColumns[colIdx] {
					continue
				}
				if re.MatchString(cell) {
					matchedColumns[colIdx] = true
					break
				}
			}
		}
		if len(matchedColumns) >= minMatches {
			return true, fmt.Sprintf("row offset %d matches %d/%d columns", rowIdx, len(matchedColumns), len(columnSpecs)), map[string]any{"row_offset": rowIdx}
		}
	}
	return false, fmt.Sprintf("no row in %s!%s matches at least %d columns", sheetName, rangeRef, minMatches), nil
}

func sheetOnly(params map[string]interface{}, env *Env) (string, error) {
	name, err := requireString(params, "sheet")
	if err != nil {
		return "", err
	}
	return env.ResolveSheet(name)
}

func sheetAndCell(params map[string]interface{}, env *Env) (string, string, error) {
	sheetName, err := sheetOnly(params, env)
	if err != nil {
		return "", "", err
	}
	cellRef, err := requireString(params, "cell")
	if err != nil {
		return "", "", err
	}
	return sheetName, cellRef, nil
}

func sheetAndRange(params map[string]interface{}, env *Env) (string, string, error) {
	sheetName, err := sheetOnly(params, env)
	if err != nil {
		return "", "", err
	}
	rangeRef, err := requireString(params, "range")
	if err != nil {
		return "", "", err
	}
	return sheetName, rangeRef, nil
}

func requireFloat(params map[string]interface{}, key string) (float64, error) {
	v, ok := getFloat(params, key)
	if !ok {
		return 0, fmt.Errorf("missing required numeric parameter %q", key)
	}
	return v, nil
}
