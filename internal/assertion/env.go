package assertion

import (
	"fmt"
	"strings"
)

// Env is the per-evaluation environment threaded through one fingerprint's
// assertion list: it accumulates sheet-name bindings captured by
// sheet_name_regex's optional bind (spec §9 "Binding of captured sheet
// names"), consulted by later assertions' sheet field via a "{{name}}"
// token.
type Env struct {
	bindings map[string]string
}

// NewEnv returns an empty evaluation environment.
func NewEnv() *Env {
	return &Env{bindings: make(map[string]string)}
}

// Bind records name -> sheet for later "{{name}}" resolution.
func (e *Env) Bind(name, sheet string) {
	e.bindings[name] = sheet
}

// ResolveSheet expands a "{{name}}" token to its bound sheet name, or
// returns raw unchanged if it is not a template token.
func (e *Env) ResolveSheet(raw string) (string, error) {
	if !strings.HasPrefix(raw, "{{") || !strings.HasSuffix(raw, "}}") {
		return raw, nil
	}
	name := strings.TrimSpace(raw[2 : len(raw)-2])
	sheet, ok := e.bindings[name]
	if !ok {
		return "", fmt.Errorf("unbound sheet reference %q", raw)
	}
	return sheet, nil
}
