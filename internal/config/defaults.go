package config

import (
	"os"
	"path/filepath"
)

// Default value constants to avoid magic numbers and strings.
const (
	DefaultIndexURL       = "https://downloads.corpora.dev/packages/index.json"
	DefaultTimeoutSeconds = 30

	DefaultMaxRetries  = 3
	DefaultBaseDelayMS = 500
	DefaultMaxDelayMS  = 15000

	DefaultLogLevel = "info"
)

// NewDefaultConfig returns a configuration with every default applied.
func NewDefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir: DefaultDataDir(),
		},
		Index: IndexConfig{
			URL:            DefaultIndexURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Retry: RetryConfig{
			MaxRetries:  DefaultMaxRetries,
			BaseDelayMS: DefaultBaseDelayMS,
			MaxDelayMS:  DefaultMaxDelayMS,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// DefaultDataDir returns the per-user data directory, ~/corpora_data.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "corpora_data"
	}
	return filepath.Join(home, "corpora_data")
}

// DefaultPath returns the default configuration file location,
// ~/.config/corpora/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "corpora", "config.yaml")
	}
	return filepath.Join(home, ".config", "corpora", "config.yaml")
}
