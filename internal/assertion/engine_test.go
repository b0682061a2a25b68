package assertion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/fingerprint/internal/document"
	"github.com/jackzampolin/fingerprint/internal/fpdef"
)

func TestEvaluateShortCircuitsAfterFirstFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	if err := os.WriteFile(path, []byte("Name,Amount\nAlice,10\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	doc, err := document.Open(path, "csv", "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	def := &fpdef.Definition{
		ID:     "t.v1",
		Format: fpdef.FormatCSV,
		Assertions: []fpdef.Assertion{
			{Kind: "sheet_exists", Name: "a1", Params: map[string]interface{}{"sheet": "DoesNotExist"}},
			{Kind: "sheet_min_rows", Name: "a2", Params: map[string]interface{}{"sheet": "csv", "min": 1}},
		},
	}

	matched, results, _ := Evaluate(def, doc, false)
	if matched {
		t.Fatal("expected no match")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Passed {
		t.Error("expected first assertion to fail")
	}
	if results[1].Passed || results[1].Detail != skippedDetail {
		t.Errorf("expected second assertion to be skipped, got %+v", results[1])
	}
}

func TestEvaluateDiagnoseRunsAllAndAddsContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	if err := os.WriteFile(path, []byte("Name,Amount\nAlice,10\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	doc, err := document.Open(path, "csv", "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	def := &fpdef.Definition{
		ID:     "t.v1",
		Format: fpdef.FormatCSV,
		Assertions: []fpdef.Assertion{
			{Kind: "sheet_exists", Name: "a1", Params: map[string]interface{}{"sheet": "DoesNotExist"}},
			{Kind: "sheet_min_rows", Name: "a2", Params: map[string]interface{}{"sheet": "csv", "min": 1}},
		},
	}

	matched, results, _ := Evaluate(def, doc, true)
	if matched {
		t.Fatal("expected no match")
	}
	if results[0].Context == nil {
		t.Error("expected diagnose-mode context on the failing assertion")
	}
	if !results[1].Passed {
		t.Error("expected second assertion to actually run (and pass) in diagnose mode")
	}
}

func TestInferColumnTypeMajorityRules(t *testing.T) {
	if got := inferColumnType([]string{"", "", ""}); got != typeString {
		t.Errorf("all-blank column = %q, want string", got)
	}
	if got := inferColumnType([]string{"1", "a"}); got != typeString {
		t.Errorf("50/50 split column = %q, want string", got)
	}
	if got := inferColumnType([]string{"1", "2", "a"}); got != typeNumber {
		t.Errorf("majority-number column = %q, want number", got)
	}
}

func TestTextNearDistanceBidirectionalAndTies(t *testing.T) {
	content := "Total Revenue: 42"
	// The one-space gap between "Total" and "Revenue:" is whitespace-only
	// and under 10 chars, so it collapses to distance 0 in either order.
	if d := textNearDistance(0, 5, 6, 14, content); d != 0 {
		t.Errorf("distance = %d, want 0", d)
	}
	if d := textNearDistance(6, 14, 0, 5, content); d != 0 {
		t.Errorf("reversed order distance = %d, want 0", d)
	}
	if d := textNearDistance(0, 10, 3, 6, content); d != 0 {
		t.Errorf("overlapping spans distance = %d, want 0", d)
	}
}
