// Package cliout writes the tool's structured output: info-flag payloads
// (--list, --describe) and recognition JSONL records. All of it is JSON — the envelope and JSONL records are a fixed
// wire contract (spec §6), so unlike the teacher's output package there is
// no YAML output mode; yaml.v3 is reserved for fingerprint definition
// authoring, not CLI output.
package cliout

import (
	"bufio"
	"encoding/json"
	"io"
)

// WriteIndented writes data to w as pretty-printed JSON, used for info
// flags.
func WriteIndented(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// LineWriter emits one compact JSON object per line, matching the output
// JSONL contract (spec §6). It wraps a buffered writer so the emitter can
// flush once per record without a syscall per write.
type LineWriter struct {
	w *bufio.Writer
}

// NewLineWriter wraps w for JSONL emission.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: bufio.NewWriter(w)}
}

// WriteLine marshals data as compact JSON, appends a newline, and flushes.
func (l *LineWriter) WriteLine(data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return err
	}
	return l.w.Flush()
}

// Flush flushes any buffered output.
func (l *LineWriter) Flush() error {
	return l.w.Flush()
}
