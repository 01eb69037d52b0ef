package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService_Dashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		s := newServices(t, false)

		stats, err := s.stats.Dashboard(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.Clients.Total)
		assert.Zero(t, stats.Projects.Total)
		assert.Zero(t, stats.Invoices.Total)
		assert.Zero(t, stats.TotalRevenue)
	})

	t.Run("aggregates every collection", func(t *testing.T) {
		s := newServices(t, false)
		acme := s.createClient(t, "Acme", "ops@acme.test")
		_, err := s.clients.Create(ctx, &domain.CreateClientRequest{
			Name: "Lead", Email: "lead@x.test", Status: domain.ClientStatusProspect,
		})
		require.NoError(t, err)

		s.createProject(t, acme.ID, 1000, domain.ProjectStatusCompleted)
		s.createProject(t, acme.ID, 500, domain.ProjectStatusInProgress)
		_, err = s.projects.Create(ctx, &domain.CreateProjectRequest{
			Title:    "Late",
			ClientID: acme.ID,
			Status:   domain.ProjectStatusInProgress,
			EndDate:  &domain.Timestamp{Time: testutil.Date(2024, time.February, 1)},
		})
		require.NoError(t, err)

		paid := s.createInvoice(t, acme.ID, nil)
		overdue := s.createInvoice(t, acme.ID, testutil.Ptr(testutil.Date(2024, time.March, 1)))
		s.createInvoice(t, acme.ID, testutil.Ptr(testutil.Date(2024, time.April, 1)))
		for _, id := range []string{paid.ID, overdue.ID} {
			_, err := s.invoices.UpdateStatus(ctx, id, &domain.UpdateInvoiceStatusRequest{Status: domain.InvoiceStatusSent})
			require.NoError(t, err)
		}
		_, err = s.invoices.UpdateStatus(ctx, paid.ID, &domain.UpdateInvoiceStatusRequest{Status: domain.InvoiceStatusPaid})
		require.NoError(t, err)

		require.NoError(t, s.notifications.Emit(ctx, &domain.Notification{
			Type: domain.NotificationSystemAlert, Title: "hi", Message: "there",
		}))

		stats, err := s.stats.Dashboard(ctx)
		require.NoError(t, err)

		assert.Equal(t, domain.ClientStatsDTO{Total: 2, Active: 1, Prospect: 1}, stats.Clients)

		assert.Equal(t, 3, stats.Projects.Total)
		assert.Equal(t, 1, stats.Projects.Completed)
		assert.Equal(t, 2, stats.Projects.InProgress)
		assert.Equal(t, 1, stats.Projects.Overdue)
		assert.Equal(t, 1500.0, stats.Projects.TotalValue)

		assert.Equal(t, 3, stats.Invoices.Total)
		assert.Equal(t, 1, stats.Invoices.Paid)
		assert.Equal(t, 1, stats.Invoices.Overdue)
		assert.Equal(t, 1, stats.Invoices.Draft)
		assert.Equal(t, 1000.0, stats.TotalRevenue)
		assert.Equal(t, 1000.0, stats.PendingAmount)
		assert.Equal(t, 1, stats.UnreadNotifications)
	})
}
