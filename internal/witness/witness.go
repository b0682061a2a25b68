// Package witness implements the single append-on-exit ledger record
// (spec §6 "Witness record"): one BLAKE3-identified, prev-chained entry
// per invocation, appended to the shared home-directory log unless
// opted out. Grounded on the Rust original's witness/record.rs and
// ledger.rs, with the append retried via avast/retry-go/v4 the way the
// teacher retries its own flaky I/O (docker.go's waitForReady), since a
// transient file-lock contention on the shared ledger is the same class
// of problem.
package witness

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"lukechampine.com/blake3"
)

// Input describes one run, provided by the caller so witness stays
// decoupled from the stream/recognize packages.
type Input struct {
	Tool       string
	Version    string
	BinaryHash string
	Inputs     []InputRef
	Params     map[string]any
	Outcome    string
	ExitCode   int
	OutputHash string
	Timestamp  time.Time
}

// InputRef names one artifact consulted during the run.
type InputRef struct {
	Path  string `json:"path"`
	Hash  string `json:"hash,omitempty"`
	Bytes int64  `json:"bytes,omitempty"`
}

// Record is one ledger entry (spec §6): id is this entry's own BLAKE3
// digest over its canonical payload (every field except id itself); prev
// chains to the previously appended entry's id, or empty for the first.
type Record struct {
	ID         string         `json:"id"`
	Tool       string         `json:"tool"`
	Version    string         `json:"version"`
	BinaryHash string         `json:"binary_hash"`
	Inputs     []InputRef     `json:"inputs"`
	Params     map[string]any `json:"params,omitempty"`
	Outcome    string         `json:"outcome"`
	ExitCode   int            `json:"exit_code"`
	OutputHash string         `json:"output_hash"`
	Prev       string         `json:"prev,omitempty"`
	Timestamp  string         `json:"ts"`
}

// Append computes in's record id (chained to the ledger's current last
// entry's id as Prev) and appends it to path, creating the file and its
// parent directory if needed. Append failures never alter the caller's
// exit code (spec §6 "Witness failures never alter exit_code") — the
// caller decides whether to surface the returned error as a log line.
func Append(path string, in Input) error {
	prev, err := lastID(path)
	if err != nil {
		return fmt.Errorf("read witness ledger %s: %w", path, err)
	}

	rec := Record{
		Tool:       in.Tool,
		Version:    in.Version,
		BinaryHash: in.BinaryHash,
		Inputs:     in.Inputs,
		Params:     in.Params,
		Outcome:    in.Outcome,
		ExitCode:   in.ExitCode,
		OutputHash: in.OutputHash,
		Prev:       prev,
		Timestamp:  in.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	rec.ID = recordID(rec)

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal witness record: %w", err)
	}
	line = append(line, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create witness ledger directory: %w", err)
	}

	return retry.Do(
		func() error { return appendLine(path, line) },
		retry.Attempts(3),
		retry.Delay(25*time.Millisecond),
	)
}

func appendLine(path string, line []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(line)
	return err
}

// lastID scans path's final line for its id, the prev chain anchor for
// the next append. A missing file yields an empty prev (first entry).
func lastID(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	var lastLine string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lastLine = line
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if lastLine == "" {
		return "", nil
	}

	var rec Record
	if err := json.Unmarshal([]byte(lastLine), &rec); err != nil {
		return "", fmt.Errorf("parse last witness record: %w", err)
	}
	return rec.ID, nil
}

// recordID computes the BLAKE3 digest over rec's canonical JSON payload
// with ID cleared, so the id is never self-referential.
func recordID(rec Record) string {
	rec.ID = ""
	payload, _ := json.Marshal(rec)
	sum := blake3.Sum256(payload)
	return "blake3:" + hex.EncodeToString(sum[:])
}

// HashStdout computes the output_hash field: BLAKE3 of the entire stdout
// JSONL stream, or of the refusal envelope JSON for a REFUSAL outcome
// (spec §6).
func HashStdout(data []byte) string {
	sum := blake3.Sum256(data)
	return "blake3:" + hex.EncodeToString(sum[:])
}
