package config

import "time"

// Config is the root configuration structure for Saturn. It covers the
// trust store location, the optional import watcher, scheduled
// maintenance, and telemetry.
type Config struct {
	// Store contains trust store database settings.
	Store StoreConfig `yaml:"store"`

	// Import contains drop-directory import watcher settings.
	Import ImportConfig `yaml:"import"`

	// Janitor contains scheduled maintenance settings.
	Janitor JanitorConfig `yaml:"janitor"`

	// Telemetry contains logging and metrics settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// StoreConfig contains trust store database settings.
type StoreConfig struct {
	// Path is the SQLite database file. Created (with parent
	// directories) on first open.
	// Default: "data/truststore.db"
	Path string `yaml:"path"`

	// PasswordFile optionally names a file whose (trimmed) contents are
	// the store password. The SATURN_STORE_PASSWORD environment variable
	// takes precedence. The password itself is never written to disk by
	// Saturn.
	PasswordFile string `yaml:"password_file"`
}

// ImportConfig contains settings for the drop-directory import watcher.
type ImportConfig struct {
	// Enabled turns the watcher on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// DropDir is the directory watched for PEM/DER certificate and CRL
	// files.
	// Default: "data/import"
	DropDir string `yaml:"drop_dir"`

	// DebounceInterval is how long to wait after a file event before
	// importing, so partially written files settle first.
	// Default: 200ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// JanitorConfig contains scheduled maintenance settings.
type JanitorConfig struct {
	// Schedule is a standard cron expression for maintenance runs
	// (expired-CRL pruning and WAL checkpointing). Empty disables the
	// janitor.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "text"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled turns the metrics endpoint on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address for the metrics HTTP endpoint.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Namespace is the metric name prefix.
	// Default: "saturn"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem label.
	// Default: "truststore"
	Subsystem string `yaml:"subsystem"`
}
