package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/straye-as/billing-api/internal/billing"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/mapper"
	"github.com/straye-as/billing-api/internal/repository"
	"go.uber.org/zap"
)

// StatsService aggregates counts and sums across the repositories.
// Everything is recomputed from the stored records on every call.
type StatsService struct {
	clock
	clientRepo       *repository.ClientRepository
	projectRepo      *repository.ProjectRepository
	invoiceRepo      *repository.InvoiceRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

func NewStatsService(
	clientRepo *repository.ClientRepository,
	projectRepo *repository.ProjectRepository,
	invoiceRepo *repository.InvoiceRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		clientRepo:       clientRepo,
		projectRepo:      projectRepo,
		invoiceRepo:      invoiceRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Dashboard returns client, project and invoice statistics in one response
func (s *StatsService) Dashboard(ctx context.Context) (*domain.DashboardStatsDTO, error) {
	clients := s.ClientStats(ctx)
	projects := s.ProjectStats(ctx)
	invoices := s.InvoiceStats(ctx)

	return &domain.DashboardStatsDTO{
		Clients:             clients,
		Projects:            projects,
		Invoices:            invoices,
		TotalRevenue:        invoices.TotalRevenue,
		PendingAmount:       invoices.PendingAmount,
		UnreadNotifications: s.notificationRepo.CountUnread(ctx),
	}, nil
}

func (s *StatsService) ClientStats(ctx context.Context) domain.ClientStatsDTO {
	var stats domain.ClientStatsDTO
	for _, c := range s.clientRepo.All(ctx) {
		stats.Total++
		switch c.Status {
		case domain.ClientStatusActive:
			stats.Active++
		case domain.ClientStatusInactive:
			stats.Inactive++
		case domain.ClientStatusProspect:
			stats.Prospect++
		}
	}
	return stats
}

// ProjectStats counts projects per status. Overdue is counted in addition to
// the status bucket: an open project past its end date.
func (s *StatsService) ProjectStats(ctx context.Context) domain.ProjectStatsDTO {
	var stats domain.ProjectStatsDTO
	now := s.Now()
	value := decimal.Zero

	for _, p := range s.projectRepo.All(ctx) {
		stats.Total++
		value = value.Add(p.Amount)
		switch p.Status {
		case domain.ProjectStatusPending:
			stats.Pending++
		case domain.ProjectStatusInProgress:
			stats.InProgress++
		case domain.ProjectStatusCompleted:
			stats.Completed++
		case domain.ProjectStatusCancelled:
			stats.Cancelled++
		case domain.ProjectStatusOnHold:
			stats.OnHold++
		}
		if p.IsOverdue(now) {
			stats.Overdue++
		}
	}

	stats.TotalValue = mapper.Money(value)
	return stats
}

// InvoiceStats counts invoices by effective status. Revenue is the total of
// paid invoices; the pending amount is the total of sent and overdue ones.
func (s *StatsService) InvoiceStats(ctx context.Context) domain.InvoiceStatsDTO {
	var stats domain.InvoiceStatsDTO
	now := s.Now()
	revenue := decimal.Zero
	pending := decimal.Zero

	for _, inv := range s.invoiceRepo.All(ctx) {
		stats.Total++
		switch billing.EffectiveStatus(inv, now) {
		case domain.InvoiceStatusDraft:
			stats.Draft++
		case domain.InvoiceStatusSent:
			stats.Sent++
			pending = pending.Add(inv.Total)
		case domain.InvoiceStatusOverdue:
			stats.Overdue++
			pending = pending.Add(inv.Total)
		case domain.InvoiceStatusPaid:
			stats.Paid++
			revenue = revenue.Add(inv.Total)
		case domain.InvoiceStatusCancelled:
			stats.Cancelled++
		}
	}

	stats.TotalRevenue = mapper.Money(revenue)
	stats.PendingAmount = mapper.Money(pending)
	return stats
}
