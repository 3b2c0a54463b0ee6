package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the trust store database and schema",
	Long: `Create the trust store database file (including missing parent
directories) and ensure the CERTIFICATES and CRLS tables exist. Safe to run
against an existing store; the schema statements are idempotent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		fmt.Printf("Trust store ready at %s (backend: %s)\n",
			config.GetConfig().Store.Path, store.Backend())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
