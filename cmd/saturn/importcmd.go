package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/truststore/importer"
)

var importTrusted bool

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import certificates and CRLs from PEM or DER files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		for _, path := range args {
			n, err := importer.ImportFile(ctx, store, path, importTrusted)
			if err != nil {
				return fmt.Errorf("importing %s: %w", path, err)
			}
			fmt.Printf("%s: %d record(s) imported\n", path, n)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importTrusted, "trusted", false, "mark imported certificates as trust anchors")
	rootCmd.AddCommand(importCmd)
}
