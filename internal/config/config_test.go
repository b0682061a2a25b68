package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Allowlist) != 0 {
		t.Errorf("expected empty allowlist by default, got %v", cfg.Allowlist)
	}
	if len(cfg.PluginDirs) != 0 {
		t.Errorf("expected empty plugin dirs by default, got %v", cfg.PluginDirs)
	}
	if cfg.DefaultJobs != 0 {
		t.Errorf("expected default_jobs=0 (CPU-derived), got %d", cfg.DefaultJobs)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultJobs != 0 {
		t.Errorf("expected defaults when file absent, got DefaultJobs=%d", cfg.DefaultJobs)
	}
}

func TestLoadReadsAllowlist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "allowlist:\n  - acme-templates\ndefault_jobs: 4\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsAllowlisted("acme-templates") {
		t.Errorf("expected acme-templates to be allowlisted")
	}
	if cfg.IsAllowlisted("unknown-crate") {
		t.Errorf("did not expect unknown-crate to be allowlisted")
	}
	if cfg.DefaultJobs != 4 {
		t.Errorf("expected default_jobs=4, got %d", cfg.DefaultJobs)
	}
}
