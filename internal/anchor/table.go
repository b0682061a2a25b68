package anchor

import (
	"fmt"
	"regexp"

	"github.com/jackzampolin/fingerprint/internal/document"
)

func resolveTable(params map[string]interface{}, doc *document.Document) (*Resolved, error) {
	md, err := doc.StructuredContent()
	if err != nil {
		return nil, err
	}
	heading, err := requireString(params, "heading")
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(heading)
	if err != nil {
		return nil, fmt.Errorf("invalid heading pattern: %w", err)
	}
	index := getInt(params, "index", 0)

	var candidates []document.Table
	for _, t := range md.Tables() {
		if t.HeadingRef != nil && re.MatchString(t.HeadingRef.Text) {
			candidates = append(candidates, t)
		}
	}
	if index < 0 || index >= len(candidates) {
		return nil, fmt.Errorf("no table at index %d under heading matching %q (found %d)", index, heading, len(candidates))
	}
	tbl := candidates[index]

	return &Resolved{
		Metadata: map[string]any{
			"start_line": tbl.StartLine,
			"end_line":   tbl.EndLine,
			"columns":    tbl.Columns,
			"row_count":  tbl.RowCount,
		},
		Content: md.Span(tbl.StartLine, tbl.EndLine),
	}, nil
}
