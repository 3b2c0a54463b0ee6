package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for invalid values. It is called by the
// loaders after defaults and overrides are applied.
func Validate(cfg *Config) error {
	if cfg.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level %q is not one of debug, info, warn, error",
			cfg.Telemetry.Logging.Level)
	}

	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format %q is not one of json, text",
			cfg.Telemetry.Logging.Format)
	}

	if cfg.Janitor.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Janitor.Schedule); err != nil {
			return fmt.Errorf("janitor.schedule %q is not a valid cron expression: %w",
				cfg.Janitor.Schedule, err)
		}
	}

	if cfg.Import.Enabled && cfg.Import.DropDir == "" {
		return fmt.Errorf("import.drop_dir must not be empty when import is enabled")
	}

	if cfg.Telemetry.Metrics.Enabled && cfg.Telemetry.Metrics.ListenAddress == "" {
		return fmt.Errorf("telemetry.metrics.listen_address must not be empty when metrics are enabled")
	}

	return nil
}
