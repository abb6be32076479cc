package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/samvad-title-fetcher/internal/domain"
)

func fetchCmd() *cobra.Command {
	var live bool
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch one title and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := domain.ModeFixture
			if live {
				mode = domain.ModeLive
			}
			return withRuntime(cmd, func(rt runtime) error {
				out := rt.Fetch(cmd.Context(), mode)
				if !out.OK() {
					fmt.Fprintln(cmd.OutOrStdout(), "error")
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", domain.ErrorKind(out.Err), out.Err)
					return fmt.Errorf("%w: %v", errReported, out.Err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), out.Response.Title)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&live, "live", false, "fetch from the live endpoint instead of the bundled fixture")
	return cmd
}
