package config

import (
	"os"
	"sync"
)

var (
	// globalConfig holds the singleton configuration instance.
	globalConfig *Config

	// configMutex protects access to globalConfig.
	configMutex sync.RWMutex

	// initOnce ensures configuration is initialized only once.
	initOnce sync.Once
)

// Initialize loads configuration from the specified path with environment
// variable overrides and stores it as the global singleton. A missing file
// falls back to defaults so the CLI works without one. Call once at
// startup; subsequent calls are ignored (sync.Once internally).
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		var cfg *Config
		if _, err := os.Stat(path); err == nil {
			cfg, initErr = LoadConfigWithEnvOverrides(path)
			if initErr != nil {
				return
			}
		} else {
			cfg = DefaultConfig()
		}

		configMutex.Lock()
		globalConfig = cfg
		configMutex.Unlock()
	})

	return initErr
}

// GetConfig returns the global configuration instance, or nil if Initialize
// has not completed successfully. Safe for concurrent use.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig replaces the global configuration instance. Intended for tests;
// production code should use Initialize.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}
