package anchor

import (
	"fmt"
	"strings"

	"github.com/jackzampolin/fingerprint/internal/assertion"
	"github.com/jackzampolin/fingerprint/internal/document"
)

// recordSeparator joins cell values within a single range extract's
// content, and separates extract rules from one another in the content
// hash input (spec §4.4 fixes ASCII RS, 0x1E, for the latter; this reuses
// the same byte for the former in the absence of a spec-specified
// delimiter, keeping the whole extraction pipeline to one separator
// convention).
const recordSeparator = "\x1e"

func resolveRange(params map[string]interface{}, doc *document.Document, env *assertion.Env) (*Resolved, error) {
	sheet, ok := doc.Spreadsheet()
	if !ok {
		return nil, fmt.Errorf("range extract rule requires a spreadsheet document")
	}
	rawSheet, err := requireString(params, "sheet")
	if err != nil {
		return nil, err
	}
	sheetName, err := env.ResolveSheet(rawSheet)
	if err != nil {
		return nil, err
	}
	rangeRef, err := requireString(params, "range")
	if err != nil {
		return nil, err
	}

	values, err := sheet.RangeValues(sheetName, rangeRef)
	if err != nil {
		return nil, err
	}

	var cells []string
	for _, row := range values {
		cells = append(cells, row...)
	}

	return &Resolved{
		Metadata: map[string]any{"range": rangeRef, "row_count": len(values)},
		Content:  strings.Join(cells, recordSeparator),
	}, nil
}
