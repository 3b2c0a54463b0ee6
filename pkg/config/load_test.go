package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "store:\n  path: /var/lib/saturn/trust.db\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Store.Path != "/var/lib/saturn/trust.db" {
		t.Errorf("store path: got %q", cfg.Store.Path)
	}
	if cfg.Telemetry.Logging.Level != "info" {
		t.Errorf("default level: got %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("default format: got %q", cfg.Telemetry.Logging.Format)
	}
	if cfg.Janitor.Schedule != "0 3 * * *" {
		t.Errorf("default schedule: got %q", cfg.Janitor.Schedule)
	}
	if cfg.Import.DebounceInterval != 200*time.Millisecond {
		t.Errorf("default debounce: got %v", cfg.Import.DebounceInterval)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfig(t, "store: [not a mapping")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "store:\n  path: from-file.db\n")

	t.Setenv("SATURN_STORE_PATH", "from-env.db")
	t.Setenv("SATURN_IMPORT_ENABLED", "true")
	t.Setenv("SATURN_IMPORT_DEBOUNCE_INTERVAL", "1s")
	t.Setenv("SATURN_TELEMETRY_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Store.Path != "from-env.db" {
		t.Errorf("env override lost: got %q", cfg.Store.Path)
	}
	if !cfg.Import.Enabled {
		t.Error("bool env override lost")
	}
	if cfg.Import.DebounceInterval != time.Second {
		t.Errorf("duration env override lost: got %v", cfg.Import.DebounceInterval)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("level env override lost: got %q", cfg.Telemetry.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty path", func(c *Config) { c.Store.Path = "" }, "store.path"},
		{"bad level", func(c *Config) { c.Telemetry.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "logging.format"},
		{"bad schedule", func(c *Config) { c.Janitor.Schedule = "whenever" }, "janitor.schedule"},
		{
			"import without dir",
			func(c *Config) { c.Import.Enabled = true; c.Import.DropDir = "" },
			"import.drop_dir",
		},
		{
			"metrics without address",
			func(c *Config) { c.Telemetry.Metrics.Enabled = true; c.Telemetry.Metrics.ListenAddress = "" },
			"listen_address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestInitializeMissingFileFallsBack(t *testing.T) {
	// Initialize runs once per process, so this test owns the only call.
	if err := Initialize(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("missing config file should fall back to defaults: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("singleton not populated")
	}
	if cfg.Store.Path != "data/truststore.db" {
		t.Errorf("expected default store path, got %q", cfg.Store.Path)
	}

	// Repeat calls are ignored and keep the memoized instance.
	if err := Initialize("other.yaml"); err != nil {
		t.Fatalf("repeat Initialize failed: %v", err)
	}
	if GetConfig() != cfg {
		t.Error("repeat Initialize replaced the singleton")
	}
}

func TestSingleton(t *testing.T) {
	cfg := DefaultConfig()
	SetConfig(cfg)
	if GetConfig() != cfg {
		t.Error("singleton did not return the configured instance")
	}
}
