package fpdef

import "testing"

const sampleXLSXDef = `
id: assumptions.v1
format: xlsx
crate_name: acme-templates
semver: 1.0.0
source: dsl
assertions:
  - kind: sheet_exists
    sheet: Assumptions
  - kind: cell_eq
    sheet: Assumptions
    cell: A3
    value: Market Leasing Assumptions
  - kind: range_non_null
    sheet: Assumptions
    range: A3:D10
extracts:
  - kind: range
    name: market_leasing_assumptions
    sheet: Assumptions
    range: A3:D10
content_hash:
  algorithm: blake3
  over: [market_leasing_assumptions]
`

func TestDecodeYAML(t *testing.T) {
	def, err := DecodeYAML([]byte(sampleXLSXDef))
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	if def.ID != "assumptions.v1" {
		t.Errorf("id = %q", def.ID)
	}
	if def.Format != FormatXLSX {
		t.Errorf("format = %q", def.Format)
	}
	if len(def.Assertions) != 3 {
		t.Fatalf("expected 3 assertions, got %d", len(def.Assertions))
	}
	for _, a := range def.Assertions {
		if a.Name == "" {
			t.Errorf("assertion %q missing derived name", a.Kind)
		}
	}
}

func TestValidateRejectsFormatMismatchedAssertion(t *testing.T) {
	def := &Definition{
		ID:        "bad.v1",
		Format:    FormatXLSX,
		CrateName: "acme",
		Semver:    "1.0.0",
		Source:    SourceDSL,
		Assertions: []Assertion{
			{Kind: "heading_exists", Name: "h1"},
		},
	}
	if err := def.Validate(); err == nil {
		t.Fatal("expected validation error for content assertion on xlsx format")
	}
}

func TestValidateRejectsUnknownContentHashRule(t *testing.T) {
	def := &Definition{
		ID:        "bad.v2",
		Format:    FormatXLSX,
		CrateName: "acme",
		Semver:    "1.0.0",
		Source:    SourceDSL,
		Assertions: []Assertion{
			{Kind: "sheet_exists", Name: "s1"},
		},
		ContentHash: &ContentHashSpec{Algorithm: "blake3", Over: []string{"missing"}},
	}
	if err := def.Validate(); err == nil {
		t.Fatal("expected validation error for unknown content_hash.over entry")
	}
}

func TestValidateSchemaAcceptsSample(t *testing.T) {
	if err := ValidateSchema([]byte(sampleXLSXDef)); err != nil {
		t.Fatalf("ValidateSchema: %v", err)
	}
}

func TestValidateSchemaRejectsMissingRequired(t *testing.T) {
	bad := "id: only-id.v1\n"
	if err := ValidateSchema([]byte(bad)); err == nil {
		t.Fatal("expected schema validation failure for missing required fields")
	}
}
