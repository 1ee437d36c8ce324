// Package fetchcmd downloads the BibTeX record for a dblp.org publication.
package fetchcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bibrarian/src/internal/dblp"
)

// New returns the fetch command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <record>...",
		Short: "Fetch BibTeX records from dblp.org by record path (e.g. conf/sosp/Smith20)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, key := range args {
				rec, err := dblp.FetchRecord(cmd.Context(), key)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprint(cmd.OutOrStdout(), rec.Format())
			}
			return nil
		},
	}
}
