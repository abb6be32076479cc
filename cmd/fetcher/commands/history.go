package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent fetch outcomes from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			return withRuntime(cmd, func(rt runtime) error {
				entries, err := rt.History(limit)
				if err != nil {
					return fmt.Errorf("read history: %w", err)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, e := range entries {
					result := e.Title
					if e.ErrorKind != "" {
						result = "error (" + e.ErrorKind + ")"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CompletedAt.Format(time.RFC3339), e.Mode, e.Locator, result)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries to show")
	return cmd
}
