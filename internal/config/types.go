package config

import (
	"time"

	"github.com/corpora-dev/corpora/internal/resilience"
)

// Config is the full tool configuration.
type Config struct {
	Data  DataConfig  `yaml:"data"`
	Index IndexConfig `yaml:"index"`
	Retry RetryConfig `yaml:"retry"`
	UI    UIConfig    `yaml:"ui"`
	Log   LogConfig   `yaml:"log"`
}

// DataConfig locates the local data directories.
type DataConfig struct {
	// Dir is where downloads install. Empty means the first default
	// search path.
	Dir string `yaml:"dir"`
	// ExtraPaths are additional directories searched before the defaults.
	ExtraPaths []string `yaml:"extra_paths"`
}

// IndexConfig describes the distribution server.
type IndexConfig struct {
	URL            string `yaml:"url"`
	Proxy          string `yaml:"proxy"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the HTTP timeout as a duration.
func (c IndexConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryConfig tunes retry behavior for index and archive fetches.
type RetryConfig struct {
	MaxRetries  int `yaml:"max_retries"`
	BaseDelayMS int `yaml:"base_delay_ms"`
	MaxDelayMS  int `yaml:"max_delay_ms"`
}

// Policy converts the configuration into a retry policy.
func (c RetryConfig) Policy() resilience.RetryPolicy {
	return resilience.RetryPolicy{
		MaxRetries: c.MaxRetries,
		BaseDelay:  time.Duration(c.BaseDelayMS) * time.Millisecond,
		MaxDelay:   time.Duration(c.MaxDelayMS) * time.Millisecond,
		UseJitter:  true,
	}
}

// UIConfig tunes terminal output.
type UIConfig struct {
	NoColor        bool `yaml:"no_color"`
	NonInteractive bool `yaml:"non_interactive"`
}

// LogConfig tunes logging.
type LogConfig struct {
	Level string `yaml:"level"`
}
