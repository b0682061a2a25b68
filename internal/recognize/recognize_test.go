package recognize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/fingerprint/internal/config"
	"github.com/jackzampolin/fingerprint/internal/record"
	"github.com/jackzampolin/fingerprint/internal/registry"
)

func newTestDriver(t *testing.T, requested ...string) *Driver {
	t.Helper()
	reg, err := registry.Load(config.DefaultConfig(), t.TempDir())
	if err != nil {
		t.Fatalf("registry.Load: %v", err)
	}
	d, err := NewDriver(reg, requested, false, "fingerprint", "test", "fingerprint.v1")
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	return d
}

func TestProcessSkipPassThrough(t *testing.T) {
	d := newTestDriver(t, "csv.v0")
	in := &record.Input{Version: "artifact.v1", Path: "x.csv", Skipped: true}

	out, err := d.Process(in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Fingerprint != nil {
		t.Errorf("expected nil fingerprint for skip pass-through, got %+v", out.Fingerprint)
	}
	if out.Version != "fingerprint.v1" {
		t.Errorf("version = %q, want fingerprint.v1", out.Version)
	}
}

func TestProcessBadInputIsRefusal(t *testing.T) {
	d := newTestDriver(t, "csv.v0")
	in := &record.Input{Version: "artifact.v1", Path: "x.csv"} // missing bytes_hash

	if _, err := d.Process(in); err == nil {
		t.Fatal("expected a refusal error for missing bytes_hash")
	}
}

func TestProcessCSVMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	content := "Name,Amount\nAlice,10\nBob,20\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	d := newTestDriver(t, "csv.v0")
	in := &record.Input{Version: "artifact.v1", Path: path, BytesHash: "deadbeef", Extension: "csv"}

	out, err := d.Process(in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	fr, ok := out.Fingerprint.(FingerprintResult)
	if !ok {
		t.Fatalf("expected FingerprintResult, got %T", out.Fingerprint)
	}
	if !fr.Matched {
		t.Errorf("expected csv.v0 to match, got reason %q", fr.Reason)
	}
}

func TestProcessCorruptArtifactBecomesSkip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.xlsx")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write broken xlsx: %v", err)
	}

	d := newTestDriver(t, "xlsx-assumptions.v1")
	in := &record.Input{Version: "artifact.v1", Path: path, BytesHash: "deadbeef", Extension: "xlsx"}

	out, err := d.Process(in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !out.Skipped {
		t.Error("expected corrupt artifact to be newly skipped")
	}
	if out.Fingerprint != nil {
		t.Errorf("expected nil fingerprint on skip, got %+v", out.Fingerprint)
	}
	if len(out.Warnings) != 1 || out.Warnings[0].Code != "E_PARSE" {
		t.Errorf("expected one E_PARSE warning, got %+v", out.Warnings)
	}
}
