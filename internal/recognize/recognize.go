// Package recognize implements the per-record recognition driver (spec
// §4.5): skip pass-through, field validation, lazy document opening,
// first-match-wins document-level iteration, independent child
// evaluation, and extract/hash on match. Grounded on the Rust original's
// pipeline/enricher.rs, expressed with the assertion/anchor/document
// packages already built in this tool's idiom.
package recognize

import (
	"fmt"
	"strings"

	"github.com/jackzampolin/fingerprint/internal/anchor"
	"github.com/jackzampolin/fingerprint/internal/assertion"
	"github.com/jackzampolin/fingerprint/internal/document"
	"github.com/jackzampolin/fingerprint/internal/fpdef"
	"github.com/jackzampolin/fingerprint/internal/record"
	"github.com/jackzampolin/fingerprint/internal/refusal"
	"github.com/jackzampolin/fingerprint/internal/registry"
)

// FingerprintResult is one fingerprint's evaluated outcome (spec §3
// "Fingerprint result"), used for both the document-level winner and each
// evaluated child.
type FingerprintResult struct {
	FingerprintID      string              `json:"fingerprint_id"`
	FingerprintCrate   string              `json:"fingerprint_crate"`
	FingerprintVersion string              `json:"fingerprint_version"`
	FingerprintSource  fpdef.Source        `json:"fingerprint_source"`
	Matched            bool                `json:"matched"`
	Reason             string              `json:"reason,omitempty"`
	Assertions         []assertion.Result  `json:"assertions"`
	Extracted          map[string]any      `json:"extracted"`
	ContentHash        *string             `json:"content_hash"`
	Children           []FingerprintResult `json:"children,omitempty"`
}

// Driver holds the caller-requested fingerprints for one run, split and
// ordered per spec §4.5: document-level fingerprints in CLI order, and
// content-level fingerprints grouped by parent, each group in CLI order.
type Driver struct {
	reg          *registry.Registry
	docLevel     []*fpdef.Definition
	childrenByID map[string][]*fpdef.Definition
	diagnose     bool
	toolName     string
	toolVersion  string
	outputSchema string
}

// NewDriver resolves requestedIDs against reg (E_UNKNOWN_FP on any miss)
// and partitions them into document-level and content-level groups,
// preserving the caller's given order within each group.
func NewDriver(reg *registry.Registry, requestedIDs []string, diagnose bool, toolName, toolVersion, outputSchema string) (*Driver, error) {
	d := &Driver{
		reg:          reg,
		childrenByID: make(map[string][]*fpdef.Definition),
		diagnose:     diagnose,
		toolName:     toolName,
		toolVersion:  toolVersion,
		outputSchema: outputSchema,
	}
	for _, id := range requestedIDs {
		def, err := reg.Resolve(id)
		if err != nil {
			return nil, err
		}
		if def.IsChild() {
			d.childrenByID[def.Parent] = append(d.childrenByID[def.Parent], def)
		} else {
			d.docLevel = append(d.docLevel, def)
		}
	}
	return d, nil
}

// Process runs the full per-record driver (spec §4.5 steps 1-7) and
// returns the output record. The only error return is a refusal (bad
// input field validation); document-open/parse failures are absorbed into
// a per-record skip, not returned as an error.
func (d *Driver) Process(in *record.Input) (*record.Output, error) {
	if in.Skipped {
		out := record.FromInput(in, d.outputSchema, d.toolName, d.toolVersion)
		out.Fingerprint = nil
		return out, nil
	}

	if err := in.Validate(); err != nil {
		return nil, refusal.New(refusal.CodeBadInput, err.Error(), map[string]any{"path": in.Path})
	}

	out := record.FromInput(in, d.outputSchema, d.toolName, d.toolVersion)

	ext := in.Extension
	if ext == "" {
		ext = extFromMime(in.MimeGuess)
	}

	doc, err := document.Open(in.Path, ext, in.TextPath)
	if err != nil {
		out.Skipped = true
		out.Fingerprint = nil
		out.Warnings = append(out.Warnings, record.Warning{
			Tool: d.toolName, Code: "E_PARSE",
			Message: fmt.Sprintf("failed to open document: %v", err),
			Detail:  map[string]any{"path": in.Path},
		})
		return out, nil
	}
	defer doc.Close()

	var extractWarnings []string

	winner, winnerResult, w := d.evaluateDocLevel(doc)
	extractWarnings = append(extractWarnings, w...)
	if winnerResult != nil {
		result := *winnerResult
		if winnerResult.Matched {
			var childWarnings []string
			result.Children, childWarnings = d.evaluateChildren(winner, doc)
			extractWarnings = append(extractWarnings, childWarnings...)
		}
		out.Fingerprint = result
	} else {
		out.Fingerprint = nil
	}

	for _, msg := range extractWarnings {
		out.Warnings = append(out.Warnings, record.Warning{
			Tool: d.toolName, Code: "W_EXTRACT_UNRESOLVED", Message: msg,
		})
	}

	if doc.IsSparseText() {
		out.Warnings = append(out.Warnings, record.Warning{
			Tool: d.toolName, Code: "W_SPARSE_TEXT",
			Message: "text_path content is near-empty",
			Detail:  map[string]any{"path": in.TextPath},
		})
	}

	return out, nil
}

// evaluateDocLevel runs document-level fingerprints in caller order,
// stopping at the first match (spec §4.5 step 4). If none match, the last
// no-match result is returned so callers can still report why.
func (d *Driver) evaluateDocLevel(doc *document.Document) (*fpdef.Definition, *FingerprintResult, []string) {
	var last *FingerprintResult
	var lastDef *fpdef.Definition
	var warnings []string

	for _, def := range d.docLevel {
		if !doc.FormatMatches(string(def.Format)) {
			continue
		}
		result, w := d.evaluateOne(def, doc)
		warnings = append(warnings, w...)
		lastDef, last = def, &result
		if result.Matched {
			return def, &result, warnings
		}
	}
	return lastDef, last, warnings
}

// evaluateChildren evaluates every content-level fingerprint whose parent
// is winner's id, independently, in caller order (spec §4.5 step 5).
func (d *Driver) evaluateChildren(winner *fpdef.Definition, doc *document.Document) ([]FingerprintResult, []string) {
	defs := d.childrenByID[winner.ID]
	if len(defs) == 0 {
		return nil, nil
	}
	results := make([]FingerprintResult, 0, len(defs))
	var warnings []string
	for _, def := range defs {
		result, w := d.evaluateOne(def, doc)
		results = append(results, result)
		warnings = append(warnings, w...)
	}
	return results, warnings
}

func (d *Driver) evaluateOne(def *fpdef.Definition, doc *document.Document) (FingerprintResult, []string) {
	matched, results, env := assertion.Evaluate(def, doc, d.diagnose)

	fr := FingerprintResult{
		FingerprintID:      def.ID,
		FingerprintCrate:   def.CrateName,
		FingerprintVersion: def.Semver,
		FingerprintSource:  def.Source,
		Matched:            matched,
		Assertions:         results,
	}
	if !matched {
		fr.Reason = firstFailureDetail(results)
		return fr, nil
	}

	resolved, warnings := anchor.ResolveAll(def, doc, env)
	fr.Extracted = anchor.Metadata(resolved)
	if fr.Extracted == nil {
		fr.Extracted = map[string]any{}
	}
	if hash, ok := anchor.ContentHash(def.ContentHash, resolved); ok {
		fr.ContentHash = &hash
	}
	return fr, warnings
}

func firstFailureDetail(results []assertion.Result) string {
	for _, r := range results {
		if !r.Passed {
			return fmt.Sprintf("%s: %s", r.Name, r.Detail)
		}
	}
	return ""
}

var mimeExtensions = map[string]string{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": "xlsx",
	"application/vnd.ms-excel":                                         "xlsx",
	"text/csv":                                                         "csv",
	"application/pdf":                                                  "pdf",
	"text/markdown":                                                    "md",
	"text/plain":                                                       "txt",
}

func extFromMime(mime string) string {
	mime = strings.TrimSpace(strings.ToLower(mime))
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	return mimeExtensions[mime]
}
