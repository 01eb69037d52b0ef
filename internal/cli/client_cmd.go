package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRefreshClientStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-client-stats [client-id]",
		Short: "Recompute stored project counts and revenue for one or all clients",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				c, err := app.Clients.RefreshStats(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d projects, revenue %.2f\n", c.Name, c.TotalProjects, c.TotalRevenue)
				return nil
			}

			n, err := app.Clients.RefreshAllStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Refreshed %d clients\n", n)
			return nil
		},
	}
}
