package mapper_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/mapper"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func TestMoney(t *testing.T) {
	assert.Equal(t, 10.13, mapper.Money(decimal.RequireFromString("10.125")))
	assert.Equal(t, 0.0, mapper.Money(decimal.Zero))
}

func TestToProjectDTO(t *testing.T) {
	end := now.Add(-24 * time.Hour)
	p := &domain.Project{
		Record:   domain.Record{ID: "p1", CreatedAt: now, UpdatedAt: now},
		Title:    "Website",
		ClientID: "c1",
		EndDate:  &end,
		Amount:   decimal.NewFromInt(1500),
		Status:   domain.ProjectStatusInProgress,
		Milestones: []domain.Milestone{
			{Title: "Design", DueDate: &end, Completed: true},
		},
	}

	dto := mapper.ToProjectDTO(p, "Acme", now)
	assert.Equal(t, "Acme", dto.ClientName)
	assert.Equal(t, "2024-03-03T09:00:00Z", dto.EndDate)
	assert.Equal(t, "2024-03-04T09:00:00Z", dto.CreatedAt)
	assert.Equal(t, 1500.0, dto.Amount)
	assert.True(t, dto.IsOverdue)
	assert.NotNil(t, dto.Tags)
	assert.Empty(t, dto.Tags)
	assert.Len(t, dto.Milestones, 1)
	assert.Empty(t, dto.CompletedDate)

	p.Status = domain.ProjectStatusCompleted
	assert.False(t, mapper.ToProjectDTO(p, "", now).IsOverdue)
}

func TestToInvoiceDTO_EffectiveStatus(t *testing.T) {
	past := now.Add(-time.Hour)
	inv := &domain.Invoice{
		Record:        domain.Record{ID: "i1"},
		InvoiceNumber: "INV-0001",
		Status:        domain.InvoiceStatusSent,
		DueDate:       &past,
		Total:         decimal.RequireFromString("99.999"),
		Items: []domain.InvoiceItem{
			{Description: "Hosting", Quantity: decimal.NewFromInt(1), Rate: decimal.RequireFromString("99.999"), Amount: decimal.RequireFromString("99.999")},
		},
	}

	dto := mapper.ToInvoiceDTO(inv, "Acme", now)
	assert.Equal(t, domain.InvoiceStatusOverdue, dto.Status)
	assert.Equal(t, 100.0, dto.Total)
	assert.Equal(t, 100.0, dto.Items[0].Amount)
	assert.Equal(t, domain.InvoiceStatusSent, inv.Status)

	inv.Status = domain.InvoiceStatusPaid
	assert.Equal(t, domain.InvoiceStatusPaid, mapper.ToInvoiceDTO(inv, "", now).Status)
}

func TestToNotificationDTO_Channels(t *testing.T) {
	n := &domain.Notification{
		Record:    domain.Record{ID: "n1", CreatedAt: now},
		Type:      domain.NotificationInvoiceOverdue,
		Status:    domain.NotificationStatusUnread,
		ExpiresAt: now.Add(24 * time.Hour),
		Channels: domain.NotificationChannels{
			Email: domain.ChannelDelivery{Attempted: true, Succeeded: false, Timestamp: &now, Error: "smtp down"},
		},
	}

	dto := mapper.ToNotificationDTO(n)
	assert.Equal(t, "smtp down", dto.Channels["email"].Error)
	assert.Equal(t, "2024-03-04T09:00:00Z", dto.Channels["email"].Timestamp)
	assert.False(t, dto.Channels["whatsapp"].Attempted)
	assert.Equal(t, "2024-03-05T09:00:00Z", dto.ExpiresAt)
}

func TestToUserDTO(t *testing.T) {
	dto := mapper.ToUserDTO(&domain.User{Record: domain.Record{ID: "u1"}, Email: "a@x.test", PasswordHash: "hash", Role: domain.UserRoleAdmin})
	assert.Equal(t, "u1", dto.ID)
	assert.Equal(t, domain.UserRoleAdmin, dto.Role)
}
