// Package registry loads and holds the fingerprint definitions available
// to a run (spec §4.1). It is built once at startup and never mutated
// afterward: the streaming pipeline's workers only ever read it
// concurrently, grounded on the teacher's internal/pipeline/registry.go
// Register/Get/List pattern, with the topological-ordering machinery
// dropped since fingerprints form a flat parent/child pair, not a general
// dependency graph.
package registry

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jackzampolin/fingerprint/internal/config"
	"github.com/jackzampolin/fingerprint/internal/fpdef"
	"github.com/jackzampolin/fingerprint/internal/refusal"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Summary is the list() projection (spec §4.1: "list() -> [{id, crate,
// version, source, format, parent?}]").
type Summary struct {
	ID      string       `json:"id"`
	Crate   string       `json:"crate"`
	Version string       `json:"version"`
	Source  fpdef.Source `json:"source"`
	Format  fpdef.Format `json:"format"`
	Parent  string       `json:"parent,omitempty"`
}

// Registry holds every loaded fingerprint definition, immutable after Load
// returns.
type Registry struct {
	byID map[string]*fpdef.Definition
	ids  []string // sorted
}

// Load discovers fingerprint definitions in order of precedence (spec
// §4.1): built-ins compiled into the binary, native add-on modules under
// the fingerprint home directory's modules/ convention, then optional
// plugin directories (only consulted when cfg.PluginDirs is non-empty —
// "must be disabled unless explicitly configured"). It enforces the
// load-time contracts: global id uniqueness and external-source trust.
func Load(cfg *config.Config, modulesDir string) (*Registry, error) {
	type source struct {
		defs  []*fpdef.Definition
		label string
	}

	builtins, err := loadBuiltins()
	if err != nil {
		return nil, fmt.Errorf("load built-in fingerprint definitions: %w", err)
	}
	for _, d := range builtins {
		d.Source = fpdef.SourceDSL
	}

	external, err := fpdef.LoadDir(modulesDir)
	if err != nil {
		return nil, fmt.Errorf("load native fingerprint modules: %w", err)
	}

	var plugin []*fpdef.Definition
	for _, dir := range cfg.PluginDirs {
		defs, err := fpdef.LoadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("load plugin fingerprint directory %s: %w", dir, err)
		}
		plugin = append(plugin, defs...)
	}

	sources := []source{
		{defs: builtins, label: "builtin"},
		{defs: external, label: "module:" + modulesDir},
		{defs: plugin, label: "plugin"},
	}

	providers := make(map[string][]string)
	byID := make(map[string]*fpdef.Definition)

	for _, s := range sources {
		for _, d := range s.defs {
			providers[d.ID] = append(providers[d.ID], s.label)
			if _, exists := byID[d.ID]; !exists {
				byID[d.ID] = d
			}

			if s.label != "builtin" && !cfg.IsAllowlisted(d.CrateName) {
				return nil, refusal.New(refusal.CodeUntrustedFP,
					fmt.Sprintf("fingerprint %q from crate %q is not allowlisted", d.ID, d.CrateName),
					map[string]any{"fingerprint_id": d.ID, "crate_name": d.CrateName})
			}
		}
	}

	for id, from := range providers {
		if len(from) > 1 {
			return nil, refusal.New(refusal.CodeDuplicateFPID,
				fmt.Sprintf("fingerprint id %q is provided by multiple sources", id),
				map[string]any{"fingerprint_id": id, "providers": from})
		}
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	reg := &Registry{byID: byID, ids: ids}
	if err := reg.checkOrphans(); err != nil {
		return nil, err
	}
	return reg, nil
}

func loadBuiltins() ([]*fpdef.Definition, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	var defs []*fpdef.Definition
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := builtinFS.ReadFile("builtin/" + entry.Name())
		if err != nil {
			return nil, err
		}
		def, err := fpdef.DecodeYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// checkOrphans enforces spec §4.1/§4.5: every content-level fingerprint's
// parent must refer to a loaded document-level fingerprint.
func (r *Registry) checkOrphans() error {
	for _, id := range r.ids {
		d := r.byID[id]
		if !d.IsChild() {
			continue
		}
		parent, ok := r.byID[d.Parent]
		if !ok {
			return refusal.New(refusal.CodeOrphanChild,
				fmt.Sprintf("fingerprint %q references unloaded parent %q", d.ID, d.Parent),
				map[string]any{"fingerprint_id": d.ID, "parent": d.Parent})
		}
		if parent.IsChild() {
			return refusal.New(refusal.CodeOrphanChild,
				fmt.Sprintf("fingerprint %q's parent %q is itself a content-level fingerprint", d.ID, d.Parent),
				map[string]any{"fingerprint_id": d.ID, "parent": d.Parent})
		}
	}
	return nil
}

// Resolve looks up id strictly (no fuzzy matching); a miss is always
// E_UNKNOWN_FP (spec §4.1).
func (r *Registry) Resolve(id string) (*fpdef.Definition, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, refusal.New(refusal.CodeUnknownFP,
			fmt.Sprintf("fingerprint %q is not loaded", id),
			map[string]any{"fingerprint_id": id, "available": r.ids})
	}
	return d, nil
}

// List returns every loaded fingerprint's summary, sorted by id.
func (r *Registry) List() []Summary {
	out := make([]Summary, 0, len(r.ids))
	for _, id := range r.ids {
		d := r.byID[id]
		out = append(out, Summary{
			ID: d.ID, Crate: d.CrateName, Version: d.Semver,
			Source: d.Source, Format: d.Format, Parent: d.Parent,
		})
	}
	return out
}

// Children returns every loaded content-level fingerprint whose parent is
// parentID, in registry (sorted-id) order — the caller is responsible for
// re-ordering them into the CLI's requested order (spec §4.5 step 5).
func (r *Registry) Children(parentID string) []*fpdef.Definition {
	var out []*fpdef.Definition
	for _, id := range r.ids {
		d := r.byID[id]
		if d.Parent == parentID {
			out = append(out, d)
		}
	}
	return out
}
