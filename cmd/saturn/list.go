package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/truststore"
)

var listTrustedOnly bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored certificates",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		var records []*truststore.CertificateRecord
		if listTrustedOnly {
			records, err = store.FindTrustedCertificates(ctx)
		} else {
			records, err = store.ListCertificates(ctx)
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTRUSTED\tNOT AFTER\tISSUER\tFINGERPRINT")
		for _, rec := range records {
			fmt.Fprintf(w, "%d\t%t\t%s\t%s\t%s\n",
				rec.ID, rec.Trusted,
				rec.NotAfter.Format("2006-01-02"),
				rec.IssuerName,
				shortFingerprint(rec.Fingerprint))
		}
		return w.Flush()
	},
}

// shortFingerprint abbreviates a fingerprint for tabular output. Rows
// inserted through the API are not forced to the canonical 64-char form,
// so short values print as-is.
func shortFingerprint(fp string) string {
	if len(fp) > 16 {
		return fp[:16]
	}
	return fp
}

func init() {
	listCmd.Flags().BoolVar(&listTrustedOnly, "trusted", false, "only list trust anchors")
	rootCmd.AddCommand(listCmd)
}
