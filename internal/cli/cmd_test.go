package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/reminder"
	"github.com/straye-as/billing-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeps struct {
	ran []string
}

func (f *fakeSweeps) Run(_ context.Context, job string) (*reminder.Result, error) {
	switch job {
	case reminder.JobDeadlineReminders, reminder.JobOverdueProjects,
		reminder.JobInvoiceReminders, reminder.JobNotificationCleanup:
	default:
		return nil, fmt.Errorf("%w: %s", reminder.ErrUnknownJob, job)
	}
	f.ran = append(f.ran, job)
	return &reminder.Result{Job: job, Scanned: 4, NotificationsCreated: 2}, nil
}

type fakeStats struct{}

func (fakeStats) Dashboard(context.Context) (*domain.DashboardStatsDTO, error) {
	return &domain.DashboardStatsDTO{
		Clients:             domain.ClientStatsDTO{Total: 3, Active: 2, Prospect: 1},
		Projects:            domain.ProjectStatsDTO{Total: 5, InProgress: 2, Completed: 1, Overdue: 1},
		Invoices:            domain.InvoiceStatsDTO{Total: 4, Paid: 2, TotalRevenue: 1250, PendingAmount: 300},
		TotalRevenue:        1250,
		PendingAmount:       300,
		UnreadNotifications: 7,
	}, nil
}

type fakeClients struct {
	refreshed []string
}

func (f *fakeClients) RefreshStats(_ context.Context, id string) (*domain.ClientDTO, error) {
	if id != "c1" {
		return nil, service.ErrClientNotFound
	}
	f.refreshed = append(f.refreshed, id)
	return &domain.ClientDTO{ID: id, Name: "Acme", TotalProjects: 2, TotalRevenue: 1000}, nil
}

func (f *fakeClients) RefreshAllStats(context.Context) (int, error) {
	return 3, nil
}

func testApp() (*App, *fakeSweeps, *fakeClients) {
	sweeps := &fakeSweeps{}
	clients := &fakeClients{}
	return &App{Sweeps: sweeps, Stats: fakeStats{}, Clients: clients}, sweeps, clients
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestSweepCmd(t *testing.T) {
	t.Run("single job", func(t *testing.T) {
		app, sweeps, _ := testApp()

		out, err := executeCmd(t, app, "sweep", reminder.JobOverdueProjects)
		require.NoError(t, err)
		assert.Equal(t, []string{reminder.JobOverdueProjects}, sweeps.ran)
		assert.Contains(t, out, "overdue_projects")
		assert.Contains(t, out, "SCANNED")
	})

	t.Run("all jobs in order", func(t *testing.T) {
		app, sweeps, _ := testApp()

		_, err := executeCmd(t, app, "sweep", "--all")
		require.NoError(t, err)
		assert.Equal(t, reminder.Jobs, sweeps.ran)
	})

	t.Run("unknown job", func(t *testing.T) {
		app, _, _ := testApp()

		_, err := executeCmd(t, app, "sweep", "bogus")
		require.Error(t, err)
		assert.ErrorIs(t, err, reminder.ErrUnknownJob)
	})

	t.Run("no job", func(t *testing.T) {
		app, sweeps, _ := testApp()

		_, err := executeCmd(t, app, "sweep")
		require.Error(t, err)
		assert.Empty(t, sweeps.ran)
	})
}

func TestStatsCmd(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		app, _, _ := testApp()

		out, err := executeCmd(t, app, "stats")
		require.NoError(t, err)
		assert.Contains(t, out, "Clients")
		assert.Contains(t, out, "1250.00")
		assert.Contains(t, out, "Unread notifications")
	})

	t.Run("json", func(t *testing.T) {
		app, _, _ := testApp()

		out, err := executeCmd(t, app, "stats", "--json")
		require.NoError(t, err)

		var stats domain.DashboardStatsDTO
		require.NoError(t, json.Unmarshal([]byte(out), &stats))
		assert.Equal(t, 3, stats.Clients.Total)
		assert.Equal(t, 7, stats.UnreadNotifications)
	})
}

func TestRefreshClientStatsCmd(t *testing.T) {
	t.Run("one client", func(t *testing.T) {
		app, _, clients := testApp()

		out, err := executeCmd(t, app, "refresh-client-stats", "c1")
		require.NoError(t, err)
		assert.Equal(t, []string{"c1"}, clients.refreshed)
		assert.Contains(t, out, "Acme: 2 projects, revenue 1000.00")
	})

	t.Run("all clients", func(t *testing.T) {
		app, _, _ := testApp()

		out, err := executeCmd(t, app, "refresh-client-stats")
		require.NoError(t, err)
		assert.Contains(t, out, "Refreshed 3 clients")
	})

	t.Run("missing client", func(t *testing.T) {
		app, _, _ := testApp()

		_, err := executeCmd(t, app, "refresh-client-stats", "nope")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
