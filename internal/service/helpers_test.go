package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/service"
	"github.com/straye-as/billing-api/internal/testutil"
	"github.com/stretchr/testify/require"
)

// services wires every service against one test Env sharing its clock
type services struct {
	env           *testutil.Env
	clients       *service.ClientService
	projects      *service.ProjectService
	invoices      *service.InvoiceService
	notifications *service.NotificationService
	stats         *service.StatsService
	calendar      *service.CalendarService
}

func newServices(t *testing.T, foldEmailCase bool) *services {
	t.Helper()
	env := testutil.NewEnv(t)

	s := &services{
		env:           env,
		clients:       service.NewClientService(env.Clients, env.Projects, env.Invoices, foldEmailCase, env.Logger),
		projects:      service.NewProjectService(env.Projects, env.Clients, env.Logger),
		invoices:      service.NewInvoiceService(env.Invoices, env.Clients, env.Projects, env.Logger),
		notifications: service.NewNotificationService(env.Notifications, 24*time.Hour, env.Logger),
		stats:         service.NewStatsService(env.Clients, env.Projects, env.Invoices, env.Notifications, env.Logger),
		calendar:      service.NewCalendarService(env.Projects, env.Invoices),
	}
	s.clients.SetClock(env.Clock.Now)
	s.projects.SetClock(env.Clock.Now)
	s.invoices.SetClock(env.Clock.Now)
	s.notifications.SetClock(env.Clock.Now)
	s.stats.SetClock(env.Clock.Now)
	s.calendar.SetClock(env.Clock.Now)
	return s
}

func (s *services) createClient(t *testing.T, name, email string) *domain.ClientDTO {
	t.Helper()
	s.env.Clock.Advance(time.Second)
	c, err := s.clients.Create(context.Background(), &domain.CreateClientRequest{Name: name, Email: email})
	require.NoError(t, err)
	return c
}

func (s *services) createProject(t *testing.T, clientID string, amount int64, status domain.ProjectStatus) *domain.ProjectDTO {
	t.Helper()
	s.env.Clock.Advance(time.Second)
	p, err := s.projects.Create(context.Background(), &domain.CreateProjectRequest{
		Title:    "Website",
		ClientID: clientID,
		Amount:   decimal.NewFromInt(amount),
		Status:   status,
	})
	require.NoError(t, err)
	return p
}

func (s *services) createInvoice(t *testing.T, clientID string, due *time.Time) *domain.InvoiceDTO {
	t.Helper()
	s.env.Clock.Advance(time.Second)
	req := &domain.CreateInvoiceRequest{
		ClientID: clientID,
		Items:    []domain.InvoiceItemRequest{item("Design", 2, 500)},
	}
	if due != nil {
		req.DueDate = &domain.Timestamp{Time: *due}
	}
	inv, err := s.invoices.Create(context.Background(), req)
	require.NoError(t, err)
	return inv
}

func item(desc string, qty, rate int64) domain.InvoiceItemRequest {
	return domain.InvoiceItemRequest{
		Description: desc,
		Quantity:    decimal.NewFromInt(qty),
		Rate:        decimal.NewFromInt(rate),
	}
}

func updateProjectRequest(p *domain.ProjectDTO, status domain.ProjectStatus) *domain.UpdateProjectRequest {
	return &domain.UpdateProjectRequest{
		Title:    p.Title,
		ClientID: p.ClientID,
		Amount:   decimal.NewFromFloat(p.Amount),
		Status:   status,
		Priority: p.Priority,
		Progress: p.Progress,
	}
}
