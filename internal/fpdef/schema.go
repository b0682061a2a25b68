package fpdef

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// SchemaJSON is the JSON Schema fingerprint definitions are validated
// against at load time, and the payload printed by the --schema info flag
// (spec §6, SPEC_FULL.md Domain Stack). It mirrors the structural shape
// of Definition without trying to express the per-assertion-kind
// parameter shapes, which are validated procedurally by the assertion
// package instead.
const SchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://fingerprint.local/schema/definition.json",
  "title": "fingerprint definition",
  "type": "object",
  "required": ["id", "format", "crate_name", "semver", "source", "assertions"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "format": {"type": "string", "enum": ["xlsx", "csv", "pdf", "markdown", "text"]},
    "parent": {"type": "string"},
    "crate_name": {"type": "string"},
    "semver": {"type": "string"},
    "source": {"type": "string", "enum": ["dsl", "rust"]},
    "assertions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["kind"],
        "properties": {
          "kind": {"type": "string"},
          "name": {"type": "string"}
        }
      }
    },
    "extracts": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["kind", "name"],
        "properties": {
          "kind": {"type": "string", "enum": ["range", "table", "section", "text_match"]},
          "name": {"type": "string"}
        }
      }
    },
    "content_hash": {
      "type": "object",
      "required": ["algorithm", "over"],
      "properties": {
        "algorithm": {"type": "string", "enum": ["blake3"]},
        "over": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

var compiledSchema *jsonschema.Schema

func compileSchema() (*jsonschema.Schema, error) {
	if compiledSchema != nil {
		return compiledSchema, nil
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("definition.json", bytes.NewReader([]byte(SchemaJSON))); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := compiler.Compile("definition.json")
	if err != nil {
		return nil, fmt.Errorf("compile definition schema: %w", err)
	}
	compiledSchema = sch
	return sch, nil
}

// ValidateSchema checks raw YAML definition bytes against SchemaJSON,
// independent of Definition's own Go-level Validate. DecodeYAML runs it
// first on every loaded definition; load-time field checks in Validate
// still run afterward for checks the JSON Schema cannot express
// (cross-field rules like content_hash.over referencing a declared extract
// name).
func ValidateSchema(data []byte) error {
	sch, err := compileSchema()
	if err != nil {
		return err
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode definition: %w", err)
	}

	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("re-encode definition as JSON: %w", err)
	}
	var jsonDoc interface{}
	if err := json.Unmarshal(jsonBytes, &jsonDoc); err != nil {
		return fmt.Errorf("decode definition as JSON: %w", err)
	}

	if err := sch.Validate(jsonDoc); err != nil {
		return fmt.Errorf("definition failed schema validation: %w", err)
	}
	return nil
}
