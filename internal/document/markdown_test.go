package document

import (
	"os"
	"strings"
	"testing"
)

func TestConvertSetextToATX(t *testing.T) {
	input := "Title\n=====\n\nSubtitle\n--------\n"
	got := normalizeMarkdown(input)
	if !strings.Contains(got, "# Title") {
		t.Errorf("expected level-1 ATX heading, got:\n%s", got)
	}
	if !strings.Contains(got, "## Subtitle") {
		t.Errorf("expected level-2 ATX heading, got:\n%s", got)
	}
}

func TestConvertBoldAsHeadingDepthRelativeToPreceding(t *testing.T) {
	input := "# Chapter\n\n**Summary**\n\nbody text\n"
	got := normalizeMarkdown(input)
	if !strings.Contains(got, "## Summary") {
		t.Errorf("expected bold line promoted to level 2 (one deeper than level 1), got:\n%s", got)
	}
}

func TestConvertBoldAsHeadingDefaultsToLevelTwoWithNoPrecedingHeading(t *testing.T) {
	input := "**Intro**\n\nbody\n"
	got := normalizeMarkdown(input)
	if !strings.Contains(got, "## Intro") {
		t.Errorf("expected level 2 default, got:\n%s", got)
	}
}

func TestNormalizeWhitespaceCollapsesBlankLines(t *testing.T) {
	input := "a\n\n\n\nb\n"
	got := normalizeMarkdown(input)
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("expected blank line runs collapsed to one, got: %q", got)
	}
}

func TestNormalizeTablePipes(t *testing.T) {
	line := "|  Col1  |Col2|   Col3   |"
	got := normalizeTablePipes([]string{line})[0]
	want := " | Col1 | Col2 | Col3 | "
	if got != want {
		t.Errorf("normalizeTablePipes(%q) = %q, want %q", line, got, want)
	}
}

func TestParseHeadingsAndSections(t *testing.T) {
	content := "# One\n\nfirst body\n\n## Two\n\nsecond body\n\n# Three\n\nthird body\n"
	md := ParseMarkdown("doc.md", content)

	if len(md.Headings()) != 3 {
		t.Fatalf("expected 3 headings, got %d", len(md.Headings()))
	}
	if md.Headings()[1].Level != 2 {
		t.Errorf("expected second heading at level 2, got %d", md.Headings()[1].Level)
	}

	sections := md.Sections()
	var two *Section
	for i := range sections {
		if sections[i].Heading != nil && sections[i].Heading.Text == "Two" {
			two = &sections[i]
		}
	}
	if two == nil {
		t.Fatal("expected a section for heading Two")
	}
	if !strings.Contains(two.Content, "second body") {
		t.Errorf("section Two missing its body: %q", two.Content)
	}
	if strings.Contains(two.Content, "third body") {
		t.Errorf("section Two should end before the next level-1 heading: %q", two.Content)
	}
}

func TestParseTablesNearestPrecedingHeadingAnyLevel(t *testing.T) {
	content := "# Report\n\n## Detail\n\nintro\n\n" +
		"| A | B |\n| --- | --- |\n| 1 | 2 |\n| 3 | 4 |\n"
	md := ParseMarkdown("doc.md", content)

	tables := md.Tables()
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	tbl := tables[0]
	if tbl.HeadingRef == nil || tbl.HeadingRef.Text != "Detail" {
		t.Errorf("expected table's nearest preceding heading to be Detail, got %+v", tbl.HeadingRef)
	}
	if tbl.RowCount != 2 {
		t.Errorf("expected 2 data rows, got %d", tbl.RowCount)
	}
	if len(tbl.Columns) != 2 {
		t.Errorf("expected 2 columns, got %d", len(tbl.Columns))
	}
}

func TestParseCellRefAndRangeRefNormalizeCorners(t *testing.T) {
	ref, err := ParseCellRef("AA12")
	if err != nil {
		t.Fatalf("ParseCellRef: %v", err)
	}
	if ref.Row != 12 {
		t.Errorf("row = %d", ref.Row)
	}

	a, err := ParseRangeRef("B10:A3")
	if err != nil {
		t.Fatalf("ParseRangeRef: %v", err)
	}
	b, err := ParseRangeRef("A3:B10")
	if err != nil {
		t.Fatalf("ParseRangeRef: %v", err)
	}
	if a != b {
		t.Errorf("expected B10:A3 to normalize the same as A3:B10, got %+v vs %+v", a, b)
	}
}

func TestCSVVirtualSheetNames(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/quarterly.csv"
	if err := os.WriteFile(path, []byte("Name,Amount\nAlice,10\nBob,20\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	v, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	for _, name := range []string{"Sheet1", "csv", "quarterly"} {
		if !v.SheetExists(name) {
			t.Errorf("expected virtual sheet name %q to exist", name)
		}
	}
	if v.SheetExists("Sheet2") {
		t.Errorf("did not expect Sheet2 to exist")
	}

	val, ok, err := v.CellValue("csv", "A2")
	if err != nil || !ok {
		t.Fatalf("CellValue A2: %v ok=%v", err, ok)
	}
	if val != "Alice" {
		t.Errorf("A2 = %q, want Alice", val)
	}
}
