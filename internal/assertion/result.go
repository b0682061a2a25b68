// Package assertion implements the ~22 deterministic predicate kinds
// (spec §4.3) that define fingerprint template membership, their
// evaluation order and short-circuit rule, and diagnose-mode diagnostic
// context.
package assertion

// Result is one evaluated assertion entry (spec §3 "Assertion result").
type Result struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Detail  string `json:"detail,omitempty"`
	Context any    `json:"context,omitempty"`
}

const skippedDetail = "Skipped (prior assertion failed)"
