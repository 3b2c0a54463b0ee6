package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/truststore/backend"
)

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Show the resolved SQLite backend",
	Long: `Probe the SQLite binding registry and report which backend this binary
will use. Resolution happens once per process; the result shown here is the
same one every store open will use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := backend.Resolve()
		if errors.Is(err, backend.ErrNoBackend) {
			return fmt.Errorf("no usable sqlite backend on this platform")
		}
		if err != nil {
			return err
		}
		fmt.Printf("Backend: %s\n", provider.Name())
		fmt.Printf("Driver:  %s\n", provider.DriverName())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backendCmd)
}
