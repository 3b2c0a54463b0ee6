package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/telemetry/logging"
	"mercator-hq/saturn/pkg/truststore"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "saturn",
	Short: "Saturn - persistent X.509 trust store",
	Long: `Saturn is a persistent trust store for X.509 certificates, certificate
revocation lists, and encrypted private keys, stored in SQLite.

A working SQLite binding is resolved at startup: the native cgo binding is
preferred and the pure Go binding is the universal fallback, so one binary
covers desktop, mobile, and server targets.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads configuration and installs the default logger. A missing
// config file falls back to defaults so the CLI works out of the box.
func setup() error {
	if err := config.Initialize(cfgFile); err != nil {
		return err
	}
	cfg := config.GetConfig()

	logCfg := cfg.Telemetry.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	_, err := logging.Setup(&logCfg)
	return err
}

// storePassword resolves the store password: the SATURN_STORE_PASSWORD
// environment variable wins, then the configured password file.
func storePassword(cfg *config.Config) (string, error) {
	if pw := os.Getenv("SATURN_STORE_PASSWORD"); pw != "" {
		return pw, nil
	}
	if cfg.Store.PasswordFile != "" {
		data, err := os.ReadFile(cfg.Store.PasswordFile)
		if err != nil {
			return "", fmt.Errorf("reading password file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return "", fmt.Errorf("no store password: set SATURN_STORE_PASSWORD or store.password_file")
}

// openStore opens the configured trust store.
func openStore() (*truststore.Store, error) {
	cfg := config.GetConfig()
	pw, err := storePassword(cfg)
	if err != nil {
		return nil, err
	}
	return truststore.Open(cfg.Store.Path, pw)
}
