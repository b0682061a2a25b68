package assertion

import (
	"fmt"

	"github.com/jackzampolin/fingerprint/internal/document"
	"github.com/jackzampolin/fingerprint/internal/fpdef"
)

// Evaluate runs def's assertions against doc in declaration order,
// applying the short-circuit rule (spec §4.3): on first failure the
// remaining assertions are recorded as skipped, except in diagnose mode
// where every assertion runs independently and failures gain a context
// payload. The returned bool is the conjunction of every result's Passed
// field, which is correct in both modes since a non-diagnose skip marker
// is itself recorded with Passed=false.
func Evaluate(def *fpdef.Definition, doc *document.Document, diagnose bool) (bool, []Result, *Env) {
	env := NewEnv()
	results := make([]Result, 0, len(def.Assertions))
	shortCircuited := false
	matched := true

	for _, a := range def.Assertions {
		if shortCircuited && !diagnose {
			results = append(results, Result{Name: a.Name, Passed: false, Detail: skippedDetail})
			matched = false
			continue
		}

		passed, detail, context := evalOne(a.Kind, a.Params, doc, env)
		res := Result{Name: a.Name, Passed: passed, Detail: detail}
		if diagnose && !passed {
			res.Context = context
		}
		results = append(results, res)

		if !passed {
			shortCircuited = true
			matched = false
		}
	}
	return matched, results, env
}

func evalOne(kind string, params map[string]interface{}, doc *document.Document, env *Env) (bool, string, any) {
	if kind == "filename_regex" {
		return evalFilenameRegex(params, doc.Path())
	}

	if sheet, ok := doc.Spreadsheet(); ok {
		switch kind {
		case "sheet_exists":
			return evalSheetExists(params, sheet, env)
		case "sheet_name_regex":
			return evalSheetNameRegex(params, sheet, env)
		case "cell_eq":
			return evalCellEq(params, sheet, env)
		case "cell_regex":
			return evalCellRegex(params, sheet, env)
		case "range_non_null":
			return evalRangeNonNull(params, sheet, env)
		case "range_populated":
			return evalRangePopulated(params, sheet, env)
		case "sheet_min_rows":
			return evalSheetMinRows(params, sheet, env)
		case "sum_eq":
			return evalSumEq(params, sheet, env)
		case "within_tolerance":
			return evalWithinTolerance(params, sheet, env)
		case "column_search":
			return evalColumnSearch(params, sheet, env)
		case "header_row_match":
			return evalHeaderRowMatch(params, sheet, env)
		}
	}

	if pdf, ok := doc.PDF(); ok {
		switch kind {
		case "page_count":
			return evalPageCount(params, pdf)
		case "metadata_regex":
			return evalMetadataRegex(params, pdf)
		}
	}

	switch kind {
	case "heading_exists", "heading_regex", "heading_level", "section_non_empty", "section_min_lines",
		"table_exists", "table_columns", "table_shape", "table_min_rows":
		md, err := doc.StructuredContent()
		if err != nil {
			return false, err.Error(), nil
		}
		switch kind {
		case "heading_exists":
			return evalHeadingExists(params, md)
		case "heading_regex":
			return evalHeadingRegex(params, md)
		case "heading_level":
			return evalHeadingLevel(params, md)
		case "section_non_empty":
			return evalSectionNonEmpty(params, md)
		case "section_min_lines":
			return evalSectionMinLines(params, md)
		case "table_exists":
			return evalTableExists(params, md)
		case "table_columns":
			return evalTableColumns(params, md)
		case "table_shape":
			return evalTableShape(params, md)
		case "table_min_rows":
			return evalTableMinRows(params, md)
		}
	case "text_contains", "text_regex", "text_near":
		content, err := doc.TextContent()
		if err != nil {
			return false, err.Error(), nil
		}
		switch kind {
		case "text_contains":
			return evalTextContains(params, content)
		case "text_regex":
			return evalTextRegex(params, content)
		case "text_near":
			return evalTextNear(params, content)
		}
	}

	return false, fmt.Sprintf("unknown or inapplicable assertion kind %q", kind), nil
}
