// Package fpdef models the fingerprint definition (spec §3): format,
// optional parent, provenance, ordered assertions, optional extract rules,
// and an optional content-hash spec. Definitions are authored as YAML
// (the DSL compiler's output format, consumed directly here since the
// compiler itself is out of scope per spec §1) and decoded with
// gopkg.in/yaml.v3, matching the teacher's use of yaml.v3 for structured
// document formats.
package fpdef

import "fmt"

// Format is one of the five recognized document formats (spec §3).
type Format string

const (
	FormatXLSX     Format = "xlsx"
	FormatCSV      Format = "csv"
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Source names the authoring path that produced a definition (spec §3
// provenance, §9 "two authoring paths").
type Source string

const (
	SourceDSL  Source = "dsl"
	SourceRust Source = "rust"
)

// Assertion is one predicate in a fingerprint's ordered assertion list
// (spec §4.3). Kind selects the predicate (e.g. "sheet_exists",
// "text_near"); Params carries its kind-specific fields as decoded from
// YAML. The assertion package interprets Params against Kind.
type Assertion struct {
	Kind   string                 `yaml:"kind"`
	Name   string                 `yaml:"name,omitempty"`
	Params map[string]interface{} `yaml:",inline"`
}

// ExtractRule is one named content-location recipe (spec §4.4). Kind is
// one of "range", "table", "section", "text_match".
type ExtractRule struct {
	Kind   string                 `yaml:"kind"`
	Name   string                 `yaml:"name"`
	Params map[string]interface{} `yaml:",inline"`
}

// ContentHashSpec names the ordered extract rules hashed together on match
// (spec §4.4). Algorithm is always "blake3" — spec fixes the algorithm,
// but the field is kept explicit so a malformed definition naming another
// algorithm is rejected at load time rather than silently ignored.
type ContentHashSpec struct {
	Algorithm string   `yaml:"algorithm"`
	Over      []string `yaml:"over"`
}

// Definition is a single loaded fingerprint (spec §3).
type Definition struct {
	ID         string           `yaml:"id"`
	Format     Format           `yaml:"format"`
	Parent     string           `yaml:"parent,omitempty"`
	CrateName  string           `yaml:"crate_name"`
	Semver     string           `yaml:"semver"`
	Source     Source           `yaml:"source"`
	Assertions []Assertion      `yaml:"assertions"`
	Extracts   []ExtractRule    `yaml:"extracts,omitempty"`
	ContentHash *ContentHashSpec `yaml:"content_hash,omitempty"`
}

// IsChild reports whether this definition is content-level (has a parent).
func (d *Definition) IsChild() bool {
	return d.Parent != ""
}

// Validate applies load-time structural checks that are local to a single
// definition (format validity, assertion/extract vocabulary membership by
// format, content-hash algorithm). Cross-definition checks (duplicate id,
// orphan parent, trust) live in the registry package.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("fingerprint definition missing id")
	}
	switch d.Format {
	case FormatXLSX, FormatCSV, FormatPDF, FormatMarkdown, FormatText:
	default:
		return fmt.Errorf("%s: unrecognized format %q", d.ID, d.Format)
	}
	if len(d.Assertions) == 0 {
		return fmt.Errorf("%s: at least one assertion is required", d.ID)
	}
	for i, a := range d.Assertions {
		if a.Kind == "" {
			return fmt.Errorf("%s: assertion %d missing kind", d.ID, i)
		}
		if !assertionAppliesToFormat(a.Kind, d.Format) {
			return fmt.Errorf("%s: assertion kind %q does not apply to format %q", d.ID, a.Kind, d.Format)
		}
	}
	if d.ContentHash != nil {
		if d.ContentHash.Algorithm != "blake3" {
			return fmt.Errorf("%s: unsupported content_hash algorithm %q", d.ID, d.ContentHash.Algorithm)
		}
		known := make(map[string]bool, len(d.Extracts))
		for _, e := range d.Extracts {
			known[e.Name] = true
		}
		for _, name := range d.ContentHash.Over {
			if !known[name] {
				return fmt.Errorf("%s: content_hash.over references unknown extract rule %q", d.ID, name)
			}
		}
	}
	return nil
}

// DeriveNames assigns a default name ("<kind>_<n>") to any assertion
// lacking an explicit one (spec §3 "each with an explicit or derived
// name"), using a per-kind counter so repeated kinds get distinct names.
func (d *Definition) DeriveNames() {
	counts := make(map[string]int)
	for i := range d.Assertions {
		a := &d.Assertions[i]
		if a.Name != "" {
			continue
		}
		counts[a.Kind]++
		a.Name = fmt.Sprintf("%s_%d", a.Kind, counts[a.Kind])
	}
}

var universalAssertions = map[string]bool{
	"filename_regex": true,
}

var spreadsheetAssertions = map[string]bool{
	"sheet_exists": true, "sheet_name_regex": true, "cell_eq": true,
	"cell_regex": true, "range_non_null": true, "range_populated": true,
	"sheet_min_rows": true, "sum_eq": true, "within_tolerance": true,
	"column_search": true, "header_row_match": true,
}

var contentAssertions = map[string]bool{
	"heading_exists": true, "heading_regex": true, "heading_level": true,
	"text_contains": true, "text_regex": true, "text_near": true,
	"section_non_empty": true, "section_min_lines": true, "table_exists": true,
	"table_columns": true, "table_shape": true, "table_min_rows": true,
	"page_count": true, "metadata_regex": true,
}

// assertionAppliesToFormat rejects assertions whose vocabulary does not
// apply to a fingerprint's declared format at load time, rather than at
// evaluation time (spec §4.3: "the engine dispatches on format... and
// rejects assertions that do not apply to that format at load time").
func assertionAppliesToFormat(kind string, format Format) bool {
	if universalAssertions[kind] {
		return true
	}
	switch format {
	case FormatXLSX, FormatCSV:
		return spreadsheetAssertions[kind]
	case FormatMarkdown, FormatText, FormatPDF:
		return contentAssertions[kind]
	default:
		return false
	}
}
