package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/straye-as/billing-api/internal/reminder"
)

func newSweepCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:       "sweep [job]",
		Short:     "Run a reminder sweep once",
		Long:      "Run one reminder sweep immediately. Valid jobs: deadline_reminders, overdue_projects, invoice_reminders, notification_cleanup.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: reminder.Jobs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var jobs []string
			switch {
			case all:
				jobs = reminder.Jobs
			case len(args) == 1:
				jobs = args
			default:
				return fmt.Errorf("specify a job or --all")
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "JOB\tSCANNED\tCREATED\tDELETED\tCHANNEL FAILURES\tERRORS")
			for _, job := range jobs {
				result, err := app.Sweeps.Run(cmd.Context(), job)
				if err != nil {
					_ = w.Flush()
					return err
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n",
					result.Job, result.Scanned, result.NotificationsCreated,
					result.Deleted, result.ChannelFailures, result.Errors)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "run every sweep in order")
	return cmd
}
