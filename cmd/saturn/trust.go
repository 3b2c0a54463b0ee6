package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var untrust bool

var trustCmd = &cobra.Command{
	Use:   "trust <fingerprint>",
	Short: "Mark a certificate as a trust anchor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SetTrusted(cmd.Context(), args[0], !untrust); err != nil {
			return err
		}
		if untrust {
			fmt.Printf("%s is no longer trusted\n", args[0])
		} else {
			fmt.Printf("%s is now trusted\n", args[0])
		}
		return nil
	},
}

func init() {
	trustCmd.Flags().BoolVar(&untrust, "remove", false, "remove the trust flag instead")
	rootCmd.AddCommand(trustCmd)
}
