package stream

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jackzampolin/fingerprint/internal/cliout"
	"github.com/jackzampolin/fingerprint/internal/record"
	"github.com/jackzampolin/fingerprint/internal/refusal"
)

func TestRunPreservesOrderAcrossWorkers(t *testing.T) {
	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, `{"version":"artifact.v1","path":"f`+string(rune('a'+i%26))+`.csv","bytes_hash":"h"}`)
	}
	input := strings.NewReader(strings.Join(lines, "\n") + "\n")

	var buf bytes.Buffer
	out := cliout.NewLineWriter(&buf)

	process := func(in *record.Input) (*record.Output, error) {
		o := record.FromInput(in, "fingerprint.v1", "fingerprint", "test")
		o.Fingerprint = nil
		return o, nil
	}

	outcome, err := Run(context.Background(), input, out, process, Config{Jobs: 8}, nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome != Partial {
		t.Errorf("outcome = %q, want %q (no fingerprint requested => no-match)", outcome, Partial)
	}

	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(got) != len(lines) {
		t.Fatalf("got %d output lines, want %d", len(got), len(lines))
	}
	for i, line := range got {
		wantPath := `"path":"f` + string(rune('a'+i%26)) + `.csv"`
		if !strings.Contains(line, wantPath) {
			t.Errorf("line %d out of order: %s", i, line)
		}
	}
}

func TestRunRefusalOnMalformedJSON(t *testing.T) {
	input := strings.NewReader("not json\n")
	var buf bytes.Buffer
	out := cliout.NewLineWriter(&buf)

	process := func(in *record.Input) (*record.Output, error) {
		return record.FromInput(in, "fingerprint.v1", "fingerprint", "test"), nil
	}

	_, err := Run(context.Background(), input, out, process, Config{Jobs: 2}, nil, nil)
	if err == nil {
		t.Fatal("expected a refusal error for malformed JSON")
	}
	if _, ok := err.(*refusal.Error); !ok {
		t.Fatalf("expected *refusal.Error, got %T: %v", err, err)
	}
}
