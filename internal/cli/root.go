// Package cli implements the billingctl operator commands.
package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/reminder"
)

// SweepRunner runs a named reminder sweep
type SweepRunner interface {
	Run(ctx context.Context, job string) (*reminder.Result, error)
}

// StatsReader provides the dashboard aggregate
type StatsReader interface {
	Dashboard(ctx context.Context) (*domain.DashboardStatsDTO, error)
}

// ClientStatsRefresher recomputes stored client counters
type ClientStatsRefresher interface {
	RefreshStats(ctx context.Context, id string) (*domain.ClientDTO, error)
	RefreshAllStats(ctx context.Context) (int, error)
}

// App holds the services used by CLI commands.
type App struct {
	Sweeps  SweepRunner
	Stats   StatsReader
	Clients ClientStatsRefresher
}

// NewRootCmd creates the top-level "billingctl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "billingctl",
		Short:         "Operator commands for the billing API record store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSweepCmd(app),
		newStatsCmd(app),
		newRefreshClientStatsCmd(app),
	)

	return root
}
