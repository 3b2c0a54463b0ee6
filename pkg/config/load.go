package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the convention
// SATURN_SECTION_FIELD (e.g. SATURN_STORE_PATH) and always take precedence
// over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies SATURN_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Store.Path, "SATURN_STORE_PATH")
	setString(&cfg.Store.PasswordFile, "SATURN_STORE_PASSWORD_FILE")
	setBool(&cfg.Import.Enabled, "SATURN_IMPORT_ENABLED")
	setString(&cfg.Import.DropDir, "SATURN_IMPORT_DROP_DIR")
	setDuration(&cfg.Import.DebounceInterval, "SATURN_IMPORT_DEBOUNCE_INTERVAL")
	setString(&cfg.Janitor.Schedule, "SATURN_JANITOR_SCHEDULE")
	setString(&cfg.Telemetry.Logging.Level, "SATURN_TELEMETRY_LOGGING_LEVEL")
	setString(&cfg.Telemetry.Logging.Format, "SATURN_TELEMETRY_LOGGING_FORMAT")
	setBool(&cfg.Telemetry.Metrics.Enabled, "SATURN_TELEMETRY_METRICS_ENABLED")
	setString(&cfg.Telemetry.Metrics.ListenAddress, "SATURN_TELEMETRY_METRICS_LISTEN_ADDRESS")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
