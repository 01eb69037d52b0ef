package service

import (
	"context"
	"sort"
	"time"

	"github.com/straye-as/billing-api/internal/billing"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/repository"
)

// CalendarService lists dated events: project deadlines, milestones and invoice due dates
type CalendarService struct {
	clock
	projectRepo *repository.ProjectRepository
	invoiceRepo *repository.InvoiceRepository
}

func NewCalendarService(projectRepo *repository.ProjectRepository, invoiceRepo *repository.InvoiceRepository) *CalendarService {
	return &CalendarService{
		projectRepo: projectRepo,
		invoiceRepo: invoiceRepo,
	}
}

// DefaultCalendarWindow is used when the caller gives no range
const DefaultCalendarWindow = 31 * 24 * time.Hour

// Events returns every event with from <= date <= to, ordered by date.
// A zero from defaults to now and a zero to to from + DefaultCalendarWindow.
func (s *CalendarService) Events(ctx context.Context, from, to time.Time) (*domain.CalendarResponse, error) {
	now := s.Now()
	if from.IsZero() {
		from = now
	}
	if to.IsZero() {
		to = from.Add(DefaultCalendarWindow)
	}
	if to.Before(from) {
		return nil, invalidInput(errInvertedRange)
	}

	inRange := func(t *time.Time) bool {
		return t != nil && !t.Before(from) && !t.After(to)
	}

	type dated struct {
		at    time.Time
		event domain.CalendarEventDTO
	}
	var events []dated

	for _, p := range s.projectRepo.All(ctx) {
		if inRange(p.EndDate) {
			events = append(events, dated{*p.EndDate, domain.CalendarEventDTO{
				Type:      domain.CalendarProjectDeadline,
				Date:      p.EndDate.UTC().Format(time.RFC3339),
				Title:     p.Title,
				ClientID:  p.ClientID,
				ProjectID: p.ID,
				Status:    string(p.Status),
			}})
		}
		for _, m := range p.Milestones {
			if !inRange(m.DueDate) {
				continue
			}
			status := "open"
			if m.Completed {
				status = "completed"
			}
			events = append(events, dated{*m.DueDate, domain.CalendarEventDTO{
				Type:      domain.CalendarMilestone,
				Date:      m.DueDate.UTC().Format(time.RFC3339),
				Title:     p.Title + ": " + m.Title,
				ClientID:  p.ClientID,
				ProjectID: p.ID,
				Status:    status,
			}})
		}
	}

	for _, inv := range s.invoiceRepo.All(ctx) {
		if !inRange(inv.DueDate) {
			continue
		}
		events = append(events, dated{*inv.DueDate, domain.CalendarEventDTO{
			Type:      domain.CalendarInvoiceDue,
			Date:      inv.DueDate.UTC().Format(time.RFC3339),
			Title:     inv.InvoiceNumber,
			ClientID:  inv.ClientID,
			ProjectID: inv.ProjectID,
			InvoiceID: inv.ID,
			Status:    string(billing.EffectiveStatus(inv, now)),
		}})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].at.Before(events[j].at)
	})

	out := make([]domain.CalendarEventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, e.event)
	}

	return &domain.CalendarResponse{
		From:   from.UTC().Format(time.RFC3339),
		To:     to.UTC().Format(time.RFC3339),
		Events: out,
	}, nil
}
