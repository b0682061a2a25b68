// Package refusal implements the run-level fatal outcome (spec §4.7, §6):
// a single JSON envelope written to stdout in place of any JSONL output,
// followed by exit code 2.
package refusal

// Code enumerates the pipeline-level refusal triggers (spec §4.7). Unlike
// the Rust original's RefusalCode (which lacks an orphan-child case),
// CodeOrphanChild is added here per spec §4.5's orphan check.
type Code string

const (
	CodeBadInput      Code = "E_BAD_INPUT"
	CodeUnknownFP     Code = "E_UNKNOWN_FP"
	CodeDuplicateFPID Code = "E_DUPLICATE_FP_ID"
	CodeUntrustedFP   Code = "E_UNTRUSTED_FP"
	CodeOrphanChild   Code = "E_ORPHAN_CHILD"
)

// Detail carries the refusal-specific payload: code, human message, a
// structured detail object, and an optional suggested next command.
type Detail struct {
	Code        Code   `json:"code"`
	Message     string `json:"message"`
	Detail      any    `json:"detail,omitempty"`
	NextCommand string `json:"next_command,omitempty"`
}

// Envelope is the single JSON object emitted on stdout for a refusal
// (spec §6). It is never followed by any JSONL record.
type Envelope struct {
	Version string `json:"version"`
	Outcome string `json:"outcome"`
	Refusal Detail `json:"refusal"`
}

// Error implements error so refusal can be carried through normal Go
// control flow (e.g. returned from the registry builder or the driver's
// startup checks) before being rendered as an Envelope at the CLI layer.
type Error struct {
	Code        Code
	Message     string
	Detail      any
	NextCommand string
}

func (e *Error) Error() string {
	return e.Message
}

// New constructs a refusal Error.
func New(code Code, message string, detail any) *Error {
	return &Error{Code: code, Message: message, Detail: detail}
}

// Envelope renders e as the wire envelope, stamping the output schema
// version.
func (e *Error) Envelope(schemaVersion string) Envelope {
	return Envelope{
		Version: schemaVersion,
		Outcome: "REFUSAL",
		Refusal: Detail{
			Code:        e.Code,
			Message:     e.Message,
			Detail:      e.Detail,
			NextCommand: e.NextCommand,
		},
	}
}

// ExitCode is the process exit code for a refusal, fixed by spec §6.
const ExitCode = 2
