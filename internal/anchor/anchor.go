// Package anchor implements extract rules and the content hash (spec
// §4.4): given a matched fingerprint's extract rules and the document view
// that matched, it locates each rule's anchor, reports its location
// metadata (never raw content, per §3 "extracted maps extract-rule names
// to anchor-location metadata"), and computes a BLAKE3 digest over the
// rules named in a content-hash spec. Grounded on the Rust original's
// extract.rs, adapted to Go's regexp/strings idiom already established in
// internal/assertion.
package anchor

import (
	"fmt"

	"github.com/jackzampolin/fingerprint/internal/assertion"
	"github.com/jackzampolin/fingerprint/internal/document"
	"github.com/jackzampolin/fingerprint/internal/fpdef"
)

// Resolved is one extract rule's outcome: Metadata is the anchor-location
// payload that appears in the output record's "extracted" map; Content is
// the raw span consulted by the content hash, never emitted itself.
type Resolved struct {
	Metadata any
	Content  string
}

// ResolveAll runs every extract rule in def against doc, in declaration
// order. Rules that fail to resolve are omitted from the returned map and
// reported as warnings (spec §4.4 "If a rule cannot resolve, it is omitted
// from extracted and a warning is added"); the caller still records an
// overall match.
func ResolveAll(def *fpdef.Definition, doc *document.Document, env *assertion.Env) (map[string]Resolved, []string) {
	resolved := make(map[string]Resolved, len(def.Extracts))
	var warnings []string

	for _, rule := range def.Extracts {
		result, err := resolveOne(rule, doc, env)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("extract rule %q (%s) did not resolve: %v", rule.Name, rule.Kind, err))
			continue
		}
		resolved[rule.Name] = *result
	}
	return resolved, warnings
}

func resolveOne(rule fpdef.ExtractRule, doc *document.Document, env *assertion.Env) (*Resolved, error) {
	switch rule.Kind {
	case "range":
		return resolveRange(rule.Params, doc, env)
	case "table":
		return resolveTable(rule.Params, doc)
	case "section":
		return resolveSection(rule.Params, doc)
	case "text_match":
		return resolveTextMatch(rule.Params, doc)
	default:
		return nil, fmt.Errorf("unrecognized extract rule kind %q", rule.Kind)
	}
}

// Metadata builds the output-record "extracted" map (name -> metadata
// only) from a ResolveAll result.
func Metadata(resolved map[string]Resolved) map[string]any {
	if len(resolved) == 0 {
		return nil
	}
	out := make(map[string]any, len(resolved))
	for name, r := range resolved {
		out[name] = r.Metadata
	}
	return out
}
