// Package config loads and validates Saturn's YAML configuration.
//
// Configuration is loaded from a file, defaulted, optionally overridden by
// SATURN_* environment variables, and validated. A process-wide singleton
// (Initialize/GetConfig) is available for components that cannot take a
// Config by injection; prefer injection in new code.
package config
