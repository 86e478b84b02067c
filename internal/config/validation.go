package config

import (
	"net/url"
	"slices"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for correctness, collecting every
// failure rather than stopping at the first.
func Validate(cfg *Config) error {
	var errs []ValidationError

	if cfg.Data.Dir == "" {
		errs = append(errs, ValidationError{
			Field:   "data.dir",
			Message: "install directory must not be empty",
		})
	}

	if u, err := url.Parse(cfg.Index.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "index.url",
			Message: "must be an http or https URL",
			Value:   cfg.Index.URL,
		})
	}
	if cfg.Index.TimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "index.timeout_seconds",
			Message: "must be positive",
			Value:   cfg.Index.TimeoutSeconds,
		})
	}

	if cfg.Retry.MaxRetries < 0 {
		errs = append(errs, ValidationError{
			Field:   "retry.max_retries",
			Message: "must not be negative",
			Value:   cfg.Retry.MaxRetries,
		})
	}
	if cfg.Retry.BaseDelayMS < 0 || cfg.Retry.MaxDelayMS < 0 {
		errs = append(errs, ValidationError{
			Field:   "retry.base_delay_ms",
			Message: "delays must not be negative",
		})
	} else if cfg.Retry.BaseDelayMS > cfg.Retry.MaxDelayMS {
		errs = append(errs, ValidationError{
			Field:   "retry.base_delay_ms",
			Message: "base delay exceeds max delay",
			Value:   cfg.Retry.BaseDelayMS,
		})
	}

	if !slices.Contains(validLogLevels, cfg.Log.Level) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: "must be one of: debug, info, warn, error",
			Value:   cfg.Log.Level,
		})
	}

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}
