package document

import "strings"

// Heading is one ATX heading found in a normalized markdown document
// (spec §4.2).
type Heading struct {
	Level int
	Text  string
	Line  int // 1-indexed
}

// Section is the content between a heading and the next heading of equal
// or lesser level (spec §4.2). Heading is nil for the preamble section
// that precedes the first heading, if any.
type Section struct {
	Heading   *Heading
	StartLine int
	EndLine   int
	Content   string
}

// Table is a pipe-delimited markdown table (spec §4.2). HeadingRef is the
// nearest preceding heading at any level (SUPPLEMENTED FEATURE, grounded
// on the Rust original's markdown.rs::parse_tables), not constrained to
// the table's enclosing section.
type Table struct {
	HeadingRef *Heading
	Columns    []string
	RowCount   int
	StartLine  int
	EndLine    int
}

func parseHeadings(lines []string) []Heading {
	var headings []Heading
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		level := atxHeadingLevel(trimmed)
		if level == 0 {
			continue
		}
		text := strings.TrimSpace(trimmed[level:])
		headings = append(headings, Heading{Level: level, Text: text, Line: i + 1})
	}
	return headings
}

func computeSections(lines []string, headings []Heading) []Section {
	var sections []Section

	firstHeadingLine := len(lines) + 1
	if len(headings) > 0 {
		firstHeadingLine = headings[0].Line
	}
	if firstHeadingLine > 1 {
		preambleEnd := firstHeadingLine - 1
		sections = append(sections, Section{
			Heading:   nil,
			StartLine: 1,
			EndLine:   preambleEnd,
			Content:   joinLines(lines, 1, preambleEnd),
		})
	}

	for i := range headings {
		h := headings[i]
		end := len(lines)
		for j := i + 1; j < len(headings); j++ {
			if headings[j].Level <= h.Level {
				end = headings[j].Line - 1
				break
			}
		}
		sections = append(sections, Section{
			Heading:   &headings[i],
			StartLine: h.Line,
			EndLine:   end,
			Content:   joinLines(lines, h.Line, end),
		})
	}
	return sections
}

func joinLines(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}

// isTableRow reports whether a (post-normalization) line looks like a
// pipe-delimited table row.
func isTableRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.Contains(trimmed, "|") && trimmed != ""
}

// isTableSeparatorRow reports whether line is a header/body separator row
// ("---|:---:|---"), containing only dashes, colons, pipes, and spaces.
func isTableSeparatorRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.Contains(trimmed, "-") {
		return false
	}
	for _, r := range trimmed {
		switch r {
		case '-', ':', '|', ' ':
		default:
			return false
		}
	}
	return true
}

// SplitTableRow splits a pipe-delimited table row into trimmed cells,
// exposed for extract/assertion code that needs to re-read a table's data
// rows by line number.
func SplitTableRow(line string) []string {
	return splitTableRow(line)
}

func splitTableRow(line string) []string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")
	parts := strings.Split(trimmed, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseTables(lines []string, headings []Heading) []Table {
	var tables []Table
	i := 0
	for i < len(lines) {
		if !isTableRow(lines[i]) {
			i++
			continue
		}
		// Header row candidate; the very next row must be a separator row
		// for this to be a table, not arbitrary pipe-containing prose.
		if i+1 >= len(lines) || !isTableSeparatorRow(lines[i+1]) {
			i++
			continue
		}

		headerLine := i
		columns := splitTableRow(lines[headerLine])
		rowCount := 0
		j := i + 2
		for j < len(lines) && isTableRow(lines[j]) {
			rowCount++
			j++
		}

		tables = append(tables, Table{
			HeadingRef: nearestPrecedingHeading(headings, headerLine+1),
			Columns:    columns,
			RowCount:   rowCount,
			StartLine:  headerLine + 1,
			EndLine:    j,
		})
		i = j
	}
	return tables
}

func nearestPrecedingHeading(headings []Heading, beforeLine int) *Heading {
	var best *Heading
	for i := range headings {
		if headings[i].Line < beforeLine {
			best = &headings[i]
		} else {
			break
		}
	}
	return best
}
