package assertion

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jackzampolin/fingerprint/internal/document"
)

func evalHeadingExists(params map[string]interface{}, md *document.MarkdownView) (bool, string, any) {
	pattern, err := requireString(params, "pattern")
	if err != nil {
		return false, err.Error(), nil
	}
	for _, h := range md.Headings() {
		if strings.Contains(h.Text, pattern) {
			return true, fmt.Sprintf("heading %q matches", h.Text), nil
		}
	}
	return false, fmt.Sprintf("no heading contains %q", pattern), map[string]any{"headings": headingTexts(md)}
}

func evalHeadingRegex(params map[string]interface{}, md *document.MarkdownView) (bool, string, any) {
	pattern, err := requireString(params, "pattern")
	if err != nil {
		return false, err.Error(), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid pattern: %v", err), nil
	}
	for _, h := range md.Headings() {
		if re.MatchString(h.Text) {
			return true, fmt.Sprintf("heading %q matches %q", h.Text, pattern), nil
		}
	}
	return false, fmt.Sprintf("no heading matches %q", pattern), map[string]any{"headings": headingTexts(md)}
}

func evalHeadingLevel(params map[string]interface{}, md *document.MarkdownView) (bool, string, any) {
	level := getInt(params, "level", 0)
	pattern, err := requireString(params, "pattern")
	if err != nil {
		return false, err.Error(), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid pattern: %v", err), nil
	}
	for _, h := range md.Headings() {
		if h.Level == level && re.MatchString(h.Text) {
			return true, fmt.Sprintf("level-%d heading %q matches %q", level, h.Text, pattern), nil
		}
	}
	return false, fmt.Sprintf("no level-%d heading matches %q", level, pattern), map[string]any{"headings": headingTexts(md)}
}

func evalTextContains(params map[string]interface{}, content string) (bool, string, any) {
	pattern, err := requireString(params, "pattern")
	if err != nil {
		return false, err.Error(), nil
	}
	if strings.Contains(content, pattern) {
		return true, fmt.Sprintf("content contains %q", pattern), nil
	}
	return false, fmt.Sprintf("content does not contain %q", pattern), nearMisses(content, pattern)
}

func evalTextRegex(params map[string]interface{}, content string) (bool, string, any) {
	pattern, err := requireString(params, "pattern")
	if err != nil {
		return false, err.Error(), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid pattern: %v", err), nil
	}
	if re.MatchString(content) {
		return true, fmt.Sprintf("content matches %q", pattern), nil
	}
	return false, fmt.Sprintf("content does not match %q", pattern), nil
}

func evalTextNear(params map[string]interface{}, content string) (bool, string, any) {
	anchorPattern, err := requireString(params, "anchor")
	if err != nil {
		return false, err.Error(), nil
	}
	pattern, err := requireString(params, "pattern")
	if err != nil {
		return false, err.Error(), nil
	}
	withinChars := getInt(params, "within_chars", 0)

	anchorRe, err := regexp.Compile(anchorPattern)
	if err != nil {
		return false, fmt.Sprintf("invalid anchor pattern: %v", err), nil
	}
	patternRe, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid pattern: %v", err), nil
	}

	anchors := anchorRe.FindAllStringIndex(content, -1)
	matches := patternRe.FindAllStringIndex(content, -1)
	if len(anchors) == 0 {
		return false, fmt.Sprintf("anchor %q not found", anchorPattern), map[string]any{"anchor_found": false}
	}

	for _, a := range anchors {
		for _, m := range matches {
			dist := textNearDistance(a[0], a[1], m[0], m[1], content)
			if dist <= withinChars {
				return true, fmt.Sprintf("match within %d chars of anchor (distance %d)", withinChars, dist), nil
			}
		}
	}
	return false, fmt.Sprintf("no match within %d chars of any anchor occurrence", withinChars), map[string]any{
		"anchor_found":  true,
		"anchor_count":  len(anchors),
		"pattern_count": len(matches),
	}
}

// textNearDistance computes the bidirectional character gap between two
// spans (spec §4.3 text_near, §8 boundary behaviors): whichever span comes
// first, the gap to whichever comes second. Overlapping spans have
// distance 0; a whitespace-only gap shorter than 10 characters also
// collapses to distance 0.
func textNearDistance(aStart, aEnd, bStart, bEnd int, content string) int {
	var gapStart, gapEnd int
	if bStart >= aEnd {
		gapStart, gapEnd = aEnd, bStart
	} else {
		gapStart, gapEnd = bEnd, aStart
	}
	if gapEnd <= gapStart {
		return 0
	}
	gap := content[gapStart:gapEnd]
	gapChars := utf8.RuneCountInString(gap)
	if gapChars < 10 && strings.TrimSpace(gap) == "" {
		return 0
	}
	return gapChars
}

func evalSectionNonEmpty(params map[string]interface{}, md *document.MarkdownView) (bool, string, any) {
	sec, err := findSection(params, md)
	if err != nil {
		return false, err.Error(), nil
	}
	// sec.Content begins with the heading line itself; only the lines
	// after it count as the section's content.
	if strings.TrimSpace(md.Span(sec.StartLine+1, sec.EndLine)) != "" {
		return true, "section has content", nil
	}
	return false, "section is empty", map[string]any{"line_count": 0}
}

func evalSectionMinLines(params map[string]interface{}, md *document.MarkdownView) (bool, string, any) {
	sec, err := findSection(params, md)
	if err != nil {
		return false, err.Error(), nil
	}
	min := getInt(params, "min", 0)
	lines := sec.EndLine - sec.StartLine + 1
	if lines >= min {
		return true, fmt.Sprintf("section has %d lines (>= %d)", lines, min), nil
	}
	return false, fmt.Sprintf("section has %d lines (< %d)", lines, min), map[string]any{"line_count": lines}
}

func findSection(params map[string]interface{}, md *document.MarkdownView) (*document.Section, error) {
	heading, err := requireString(params, "heading")
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(heading)
	if err != nil {
		return nil, fmt.Errorf("invalid heading pattern: %w", err)
	}
	sections := md.Sections()
	for i := range sections {
		if sections[i].Heading != nil && re.MatchString(sections[i].Heading.Text) {
			return &sections[i], nil
		}
	}
	return nil, fmt.Errorf("no section under heading matching %q", heading)
}

func findTable(params map[string]interface{}, md *document.MarkdownView) (*document.Table, []document.Table, error) {
	heading, err := requireString(params, "heading")
	if err != nil {
		return nil, nil, err
	}
	re, err := regexp.Compile(heading)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid heading pattern: %w", err)
	}
	index := getInt(params, "index", 0)

	var candidates []document.Table
	for _, t := range md.Tables() {
		if t.HeadingRef != nil && re.MatchString(t.HeadingRef.Text) {
			candidates = append(candidates, t)
		}
	}
	if index < 0 || index >= len(candidates) {
		return nil, candidates, fmt.Errorf("no table at index %d under heading matching %q (found %d)", index, heading, len(candidates))
	}
	return &candidates[index], candidates, nil
}

func evalTableExists(params map[string]interface{}, md *document.MarkdownView) (bool, string, any) {
	_, candidates, err := findTable(params, md)
	if err != nil {
		return false, err.Error(), tableDiagnostic(candidates)
	}
	return true, "table found", nil
}

func evalTableColumns(params map[string]interface{}, md *document.MarkdownView) (bool, string, any) {
	tbl, candidates, err := findTable(params, md)
	if err != nil {
		return false, err.Error(), tableDiagnostic(candidates)
	}
	patterns := getStringSlice(params, "columns")
	if len(patterns) > len(tbl.Columns) {
		return false, fmt.Sprintf("table has %d columns, need %d patterns", len(tbl.Columns), len(patterns)), tableDiagnostic(candidates)
	}
	for i, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, fmt.Sprintf("invalid pattern at column %d: %v", i, err), nil
		}
		if !re.MatchString(tbl.Columns[i]) {
			return false, fmt.Sprintf("column %d header %q does not match %q", i, tbl.Columns[i], pattern), tableDiagnostic(candidates)
		}
	}
	return true, "table columns match", nil
}

func evalTableShape(params map[string]interface{}, md *document.MarkdownView) (bool, string, any) {
	tbl, candidates, err := findTable(params, md)
	if err != nil {
		return false, err.Error(), tableDiagnostic(candidates)
	}
	minColumns := getInt(params, "min_columns", 0)
	if len(tbl.Columns) < minColumns {
		return false, fmt.Sprintf("table has %d columns (< %d)", len(tbl.Columns), minColumns), tableDiagnostic(candidates)
	}

	columnTypes := getStringSlice(params, "column_types")
	if len(columnTypes) == 0 {
		return true, "table shape matches", nil
	}

	columnCells := make([][]string, len(tbl.Columns))
	for lineNo := tbl.StartLine + 2; lineNo <= tbl.EndLine; lineNo++ {
		row := document.SplitTableRow(md.LineAt(lineNo))
		for i := range columnCells {
			if i < len(row) {
				columnCells[i] = append(columnCells[i], row[i])
			}
		}
	}

	for i, want := range columnTypes {
		if i >= len(columnCells) {
			break
		}
		inferred := inferColumnType(columnCells[i])
		if !satisfiesRequiredType(inferred, cellType(want)) {
			return false, fmt.Sprintf("column %d inferred type %q does not satisfy required %q", i, inferred, want), nil
		}
	}
	return true, "table shape matches", nil
}

func evalTableMinRows(params map[string]interface{}, md *document.MarkdownView) (bool, string, any) {
	tbl, candidates, err := findTable(params, md)
	if err != nil {
		return false, err.Error(), tableDiagnostic(candidates)
	}
	min := getInt(params, "min", 0)
	if tbl.RowCount >= min {
		return true, fmt.Sprintf("table has %d rows (>= %d)", tbl.RowCount, min), nil
	}
	return false, fmt.Sprintf("table has %d rows (< %d)", tbl.RowCount, min), tableDiagnostic(candidates)
}

func evalPageCount(params map[string]interface{}, pdf *document.PDFView) (bool, string, any) {
	count := pdf.PageCount()
	if min, ok := getFloat(params, "min"); ok && float64(count) < min {
		return false, fmt.Sprintf("page count %d < min %v", count, min), map[string]any{"page_count": count}
	}
	if max, ok := getFloat(params, "max"); ok && float64(count) > max {
		return false, fmt.Sprintf("page count %d > max %v", count, max), map[string]any{"page_count": count}
	}
	return true, fmt.Sprintf("page count %d within bounds", count), nil
}

func evalMetadataRegex(params map[string]interface{}, pdf *document.PDFView) (bool, string, any) {
	key, err := requireString(params, "key")
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
	val, ok := pdf.MetadataValue(key)
	if !ok {
		return false, fmt.Sprintf("metadata key %q not present", key), map[string]any{"metadata": pdf.Metadata()}
	}
	if re.MatchString(val) {
		return true, fmt.Sprintf("metadata %q = %q matches %q", key, val, pattern), nil
	}
	return false, fmt.Sprintf("metadata %q = %q does not match %q", key, val, pattern), nil
}

func headingTexts(md *document.MarkdownView) []string {
	out := make([]string, 0, len(md.Headings()))
	for _, h := range md.Headings() {
		out = append(out, h.Text)
	}
	return out
}

// nearMisses reports up to five substrings of content sharing a short
// prefix with pattern, for diagnose-mode context on a failed text_contains
// (spec §4.3 "up to five near-miss substrings").
func nearMisses(content, pattern string) map[string]any {
	if len(pattern) < 3 {
		return nil
	}
	prefix := pattern[:min3(len(pattern), 8)]
	var misses []string
	idx := 0
	for len(misses) < 5 {
		pos := strings.Index(content[idx:], prefix[:min3(len(prefix), 3)])
		if pos < 0 {
			break
		}
		start := idx + pos
		end := start + len(prefix) + 10
		if end > len(content) {
			end = len(content)
		}
		misses = append(misses, content[start:end])
		idx = start + 1
		if idx >= len(content) {
			break
		}
	}
	if len(misses) == 0 {
		return nil
	}
	return map[string]any{"near_misses": misses}
}

func min3(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func tableDiagnostic(candidates []document.Table) any {
	if len(candidates) == 0 {
		return nil
	}
	type tableInfo struct {
		Columns  []string `json:"columns"`
		RowCount int      `json:"row_count"`
	}
	infos := make([]tableInfo, 0, len(candidates))
	for _, t := range candidates {
		infos = append(infos, tableInfo{Columns: t.Columns, RowCount: t.RowCount})
	}
	return map[string]any{"tables_under_heading": infos}
}
