package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStatsCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app.Stats.Dashboard(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Clients\t%d (active %d, inactive %d, prospect %d)\n",
				stats.Clients.Total, stats.Clients.Active, stats.Clients.Inactive, stats.Clients.Prospect)
			fmt.Fprintf(w, "Projects\t%d (in progress %d, completed %d, overdue %d)\n",
				stats.Projects.Total, stats.Projects.InProgress, stats.Projects.Completed, stats.Projects.Overdue)
			fmt.Fprintf(w, "Invoices\t%d (paid %d, overdue %d)\n",
				stats.Invoices.Total, stats.Invoices.Paid, stats.Invoices.Overdue)
			fmt.Fprintf(w, "Revenue\t%.2f\n", stats.TotalRevenue)
			fmt.Fprintf(w, "Pending\t%.2f\n", stats.PendingAmount)
			fmt.Fprintf(w, "Unread notifications\t%d\n", stats.UnreadNotifications)
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
