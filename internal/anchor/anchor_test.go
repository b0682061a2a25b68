package anchor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackzampolin/fingerprint/internal/assertion"
	"github.com/jackzampolin/fingerprint/internal/document"
	"github.com/jackzampolin/fingerprint/internal/fpdef"
)

func TestResolveAllRangeAndHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	content := "Name,Amount\nAlice,10\nBob,20\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	doc, err := document.Open(path, "csv", "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	def := &fpdef.Definition{
		ID: "t.v1",
		Extracts: []fpdef.ExtractRule{
			{Kind: "range", Name: "amounts", Params: map[string]interface{}{"sheet": "csv", "range": "A1:B3"}},
		},
		ContentHash: &fpdef.ContentHashSpec{Algorithm: "blake3", Over: []string{"amounts"}},
	}

	env := assertion.NewEnv()
	resolved, warnings := ResolveAll(def, doc, env)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	r, ok := resolved["amounts"]
	if !ok {
		t.Fatal("expected amounts rule to resolve")
	}
	meta, ok := r.Metadata.(map[string]any)
	if !ok || meta["row_count"] != 3 {
		t.Errorf("unexpected metadata: %+v", r.Metadata)
	}

	hash, ok := ContentHash(def.ContentHash, resolved)
	if !ok || !strings.HasPrefix(hash, "blake3:") {
		t.Errorf("expected blake3-prefixed hash, got %q (ok=%v)", hash, ok)
	}
}

func TestResolveAllOmitsUnresolvedRule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	if err := os.WriteFile(path, []byte("Name\nAlice\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	doc, err := document.Open(path, "csv", "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	def := &fpdef.Definition{
		ID: "t.v1",
		Extracts: []fpdef.ExtractRule{
			{Kind: "range", Name: "missing", Params: map[string]interface{}{"sheet": "NoSuchSheet", "range": "A1:B3"}},
		},
	}

	env := assertion.NewEnv()
	resolved, warnings := ResolveAll(def, doc, env)
	if len(resolved) != 0 {
		t.Errorf("expected no resolved rules, got %+v", resolved)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
}
