package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads the configuration file at path, applying defaults for
// missing fields and environment overrides on top. An empty path means
// DefaultPath; a missing file just yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := NewDefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		slog.Debug("config file not found, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidYAML, path, err)
		}
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers environment overrides on top of the file values.
// CORPORA_DATA names the install directory (its first entry when it is
// a path list), CORPORA_INDEX_URL the index, CORPORA_PROXY the proxy.
func applyEnv(cfg *Config) {
	if env := os.Getenv("CORPORA_DATA"); env != "" {
		if entries := filepath.SplitList(env); len(entries) > 0 && entries[0] != "" {
			cfg.Data.Dir = entries[0]
		}
	}
	if env := os.Getenv("CORPORA_INDEX_URL"); env != "" {
		cfg.Index.URL = env
	}
	if env := os.Getenv("CORPORA_PROXY"); env != "" {
		cfg.Index.Proxy = env
	}
}

// SearchPaths returns the resource lookup directories the configuration
// implies: extra paths first, then the install directory, then the
// shared defaults.
func (c *Config) SearchPaths(defaults []string) []string {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}
	for _, p := range c.Data.ExtraPaths {
		add(p)
	}
	add(c.Data.Dir)
	for _, p := range defaults {
		add(p)
	}
	return paths
}
