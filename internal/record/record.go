// Package record defines the input and output JSONL record envelopes
// (spec §3, §6) and the validation rules applied before recognition.
package record

import (
	"encoding/json"
	"errors"
)

// AcceptedVersions lists upstream schema tags this tool accepts on input
// (spec §6: "current and explicitly listed prior"). Adjust as upstream
// schema tags are added; this is intentionally a short, explicit list
// rather than a pattern match, matching spec's "strict; no fuzzy lookup"
// posture for identifiers elsewhere in the system.
var AcceptedVersions = map[string]bool{
	"artifact.v1": true,
	"artifact.v2": true,
}

// ErrMissingBytesHash and ErrUnrecognizedVersion back the E_BAD_INPUT
// refusal trigger (spec §4.7) for per-record field validation in the
// recognition driver.
var (
	ErrMissingBytesHash    = errors.New("bytes_hash is required for a non-skipped record")
	ErrUnrecognizedVersion = errors.New("unrecognized upstream schema version")
)

// Warning is a single entry in a record's _warnings sequence (spec §7).
type Warning struct {
	Tool    string `json:"tool"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

// Input is the upstream record shape (spec §3, §6). Fields this tool does
// not interpret are preserved via Extra so round-trip byte-equality holds
// (spec §8 "upstream fields appear verbatim in the output").
type Input struct {
	Version      string            `json:"version"`
	Path         string            `json:"path"`
	BytesHash    string            `json:"bytes_hash,omitempty"`
	Extension    string            `json:"extension,omitempty"`
	MimeGuess    string            `json:"mime_guess,omitempty"`
	Mtime        json.RawMessage   `json:"mtime,omitempty"`
	Size         json.RawMessage   `json:"size,omitempty"`
	RelativePath string            `json:"relative_path,omitempty"`
	Root         string            `json:"root,omitempty"`
	TextPath     string            `json:"text_path,omitempty"`
	ToolVersions map[string]string `json:"tool_versions,omitempty"`
	Skipped      bool              `json:"_skipped,omitempty"`
	Warnings     []Warning         `json:"_warnings,omitempty"`

	// Extra preserves any upstream field this tool does not model, so it
	// survives untouched into the output record.
	Extra map[string]json.RawMessage `json:"-"`
}

// modeledFields lists the Input struct's own JSON keys, used to split a
// decoded object between Input's typed fields and Extra.
var modeledFields = map[string]bool{
	"version": true, "path": true, "bytes_hash": true, "extension": true,
	"mime_guess": true, "mtime": true, "size": true, "relative_path": true,
	"root": true, "text_path": true, "tool_versions": true,
	"_skipped": true, "_warnings": true,
}

// ParseLine decodes one JSONL line into an Input, capturing any unmodeled
// fields into Extra for verbatim round-trip.
func ParseLine(line []byte) (*Input, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, err
	}

	var in Input
	if err := json.Unmarshal(line, &in); err != nil {
		return nil, err
	}

	in.Extra = make(map[string]json.RawMessage)
	for k, v := range raw {
		if !modeledFields[k] {
			in.Extra[k] = v
		}
	}
	return &in, nil
}

// Validate checks required fields for a non-skipped record (spec §4.5
// step 2). Skipped records waive the bytes_hash requirement (spec §6).
func (in *Input) Validate() error {
	if !AcceptedVersions[in.Version] {
		return ErrUnrecognizedVersion
	}
	if !in.Skipped && in.BytesHash == "" {
		return ErrMissingBytesHash
	}
	return nil
}

// Output is the emitted record shape (spec §3, §6): upstream fields
// preserved, version and tool_versions stamped by this tool, and a
// fingerprint result (nil for any skipped record).
type Output struct {
	Version      string            `json:"version"`
	Path         string            `json:"path"`
	BytesHash    string            `json:"bytes_hash,omitempty"`
	Extension    string            `json:"extension,omitempty"`
	MimeGuess    string            `json:"mime_guess,omitempty"`
	Mtime        json.RawMessage   `json:"mtime,omitempty"`
	Size         json.RawMessage   `json:"size,omitempty"`
	RelativePath string            `json:"relative_path,omitempty"`
	Root         string            `json:"root,omitempty"`
	TextPath     string            `json:"text_path,omitempty"`
	ToolVersions map[string]string `json:"tool_versions"`
	Skipped      bool              `json:"_skipped,omitempty"`
	Warnings     []Warning         `json:"_warnings,omitempty"`

	// Fingerprint holds the document-level result (spec §3); any evaluated
	// children are nested inside it, not duplicated at this level.
	Fingerprint any `json:"fingerprint"`

	Extra map[string]json.RawMessage `json:"-"`
}

// MarshalJSON merges Extra back into the object so unmodeled upstream
// fields survive verbatim (possibly with reordered keys, which spec's
// idempotence property explicitly allows).
func (o Output) MarshalJSON() ([]byte, error) {
	type alias Output
	base, err := json.Marshal(alias(o))
	if err != nil {
		return nil, err
	}
	if len(o.Extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range o.Extra {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// FromInput seeds an Output from an Input, stamping toolName/toolVersion
// into ToolVersions and the given outputVersion into Version, ahead of the
// recognition driver filling in Fingerprint/Warnings.
func FromInput(in *Input, outputVersion, toolName, toolVersion string) *Output {
	tv := make(map[string]string, len(in.ToolVersions)+1)
	for k, v := range in.ToolVersions {
		tv[k] = v
	}
	tv[toolName] = toolVersion

	return &Output{
		Version:      outputVersion,
		Path:         in.Path,
		BytesHash:    in.BytesHash,
		Extension:    in.Extension,
		MimeGuess:    in.MimeGuess,
		Mtime:        in.Mtime,
		Size:         in.Size,
		RelativePath: in.RelativePath,
		Root:         in.Root,
		TextPath:     in.TextPath,
		ToolVersions: tv,
		Skipped:      in.Skipped,
		Warnings:     append([]Warning{}, in.Warnings...),
		Extra:        in.Extra,
	}
}
