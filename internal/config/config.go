// Package config loads the on-disk fingerprint home-directory settings:
// the external-fingerprint-source allowlist, optional plugin directories,
// and the default worker count. Unlike the teacher's config manager, this
// one has no hot-reload: the registry built from it is immutable for the
// lifetime of a run (spec §4.1, §9 "Registry as global state"), so there is
// nothing to reload into.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// Config holds fingerprint home-directory configuration.
// Stored at: ~/.fingerprint/config.yaml
type Config struct {
	// Allowlist enumerates external-source fingerprint crate names that are
	// trusted despite not being built in (spec §4.1 E_UNTRUSTED_FP).
	Allowlist []string `mapstructure:"allowlist" yaml:"allowlist"`

	// PluginDirs lists plugin directories to scan for fingerprint definitions.
	// Deferred functionality: must remain empty unless explicitly configured
	// (spec §4.1 item 3).
	PluginDirs []string `mapstructure:"plugin_dirs" yaml:"plugin_dirs"`

	// DefaultJobs is the worker pool degree used when --jobs is not given.
	// Zero means "use available CPUs" (spec §4.6).
	DefaultJobs int `mapstructure:"default_jobs" yaml:"default_jobs"`
}

// DefaultConfig returns configuration with sensible defaults: no external
// sources trusted, no plugin directories, worker count derived from the
// host at runtime.
func DefaultConfig() *Config {
	return &Config{
		Allowlist:   []string{},
		PluginDirs:  []string{},
		DefaultJobs: 0,
	}
}

// Load reads configuration from cfgFile (if non-empty) or from the standard
// search path (./config.yaml, ~/.fingerprint/config.yaml), falling back to
// defaults when no file is found. It is read once at startup; there is no
// watch/reload path.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("allowlist", defaults.Allowlist)
	v.SetDefault("plugin_dirs", defaults.PluginDirs)
	v.SetDefault("default_jobs", defaults.DefaultJobs)

	v.SetEnvPrefix("FINGERPRINT")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.fingerprint")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// IsAllowlisted reports whether crateName is trusted as an external
// fingerprint source.
func (c *Config) IsAllowlisted(crateName string) bool {
	for _, name := range c.Allowlist {
		if name == crateName {
			return true
		}
	}
	return false
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	header := []byte("# fingerprint configuration\n# allowlist names external fingerprint crates trusted at load time\n\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
