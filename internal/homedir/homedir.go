// Package homedir resolves the fingerprint home directory (~/.fingerprint),
// the location of the user config file, installed native modules, and the
// default witness ledger path.
package homedir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name of the fingerprint home directory.
	DefaultDirName = ".fingerprint"

	// ConfigFileName is the default config file name within the home directory.
	ConfigFileName = "config.yaml"

	// ModulesDirName holds native add-on modules discovered at startup (§4.1).
	ModulesDirName = "modules"

	// WitnessFileName is the default witness ledger file within the home directory.
	WitnessFileName = "witness.jsonl"
)

// Dir represents the resolved fingerprint home directory.
type Dir struct {
	path string
}

// New creates a Dir rooted at path. If path is empty, it resolves to
// ~/.fingerprint.
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}
	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// ModulesDir returns the directory native add-on modules are discovered in.
func (d *Dir) ModulesDir() string {
	return filepath.Join(d.path, ModulesDirName)
}

// WitnessPath returns the default witness ledger path.
func (d *Dir) WitnessPath() string {
	return filepath.Join(d.path, WitnessFileName)
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// EnsureExists creates the home directory and its modules subdirectory if
// they don't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.ModulesDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create modules directory: %w", err)
	}
	return nil
}
