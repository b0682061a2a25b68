package witness

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAppendChainsPrev(t *testing.T) {
	path := filepath.Join(t.TempDir(), "witness.jsonl")

	in1 := Input{Tool: "fingerprint", Version: "1.0.0", Outcome: "ALL_MATCHED", ExitCode: 0, OutputHash: "blake3:aa", Timestamp: time.Unix(0, 0)}
	if err := Append(path, in1); err != nil {
		t.Fatalf("Append 1: %v", err)
	}
	in2 := Input{Tool: "fingerprint", Version: "1.0.0", Outcome: "PARTIAL", ExitCode: 1, OutputHash: "blake3:bb", Timestamp: time.Unix(1, 0)}
	if err := Append(path, in2); err != nil {
		t.Fatalf("Append 2: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		records = append(records, rec)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Prev != "" {
		t.Errorf("first record should have empty prev, got %q", records[0].Prev)
	}
	if records[1].Prev != records[0].ID {
		t.Errorf("second record's prev = %q, want %q", records[1].Prev, records[0].ID)
	}
	if !strings.HasPrefix(records[0].ID, "blake3:") {
		t.Errorf("id should be blake3-prefixed, got %q", records[0].ID)
	}
}
