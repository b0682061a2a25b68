package fpdef

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeYAML checks data against SchemaJSON, parses it as one fingerprint
// definition document, derives default assertion names, and runs its local
// Validate.
func DecodeYAML(data []byte) (*Definition, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decode fingerprint definition: %w", err)
	}
	def.DeriveNames()
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadDir reads every *.yaml/*.yml file directly under dir as a fingerprint
// definition. It is used for the plugin-directory and native-module
// discovery paths (spec §4.1 items 2-3); dir not existing is not an error —
// it simply yields no definitions.
func LoadDir(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read fingerprint definitions from %s: %w", dir, err)
	}

	var defs []*Definition
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		def, err := DecodeYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}
