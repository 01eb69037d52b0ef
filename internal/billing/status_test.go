package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/straye-as/billing-api/internal/billing"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	all := []domain.InvoiceStatus{
		domain.InvoiceStatusDraft,
		domain.InvoiceStatusSent,
		domain.InvoiceStatusPaid,
		domain.InvoiceStatusOverdue,
		domain.InvoiceStatusCancelled,
	}
	allowed := map[[2]domain.InvoiceStatus]bool{
		{domain.InvoiceStatusDraft, domain.InvoiceStatusSent}:      true,
		{domain.InvoiceStatusDraft, domain.InvoiceStatusCancelled}: true,
		{domain.InvoiceStatusSent, domain.InvoiceStatusPaid}:       true,
		{domain.InvoiceStatusSent, domain.InvoiceStatusCancelled}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				assert.Equal(t, allowed[[2]domain.InvoiceStatus{from, to}], billing.CanTransition(from, to))
			})
		}
	}
}

func TestTransition_KeepsTotals(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	inv := &domain.Invoice{Status: domain.InvoiceStatusDraft}
	require.NoError(t, billing.Apply(inv, []domain.InvoiceItem{item("a", "2", "50")}, d("10"), d("8")))
	before := inv.Total

	require.NoError(t, billing.Transition(inv, domain.InvoiceStatusSent, nil, now))
	assert.Equal(t, domain.InvoiceStatusSent, inv.Status)
	require.NotNil(t, inv.SentDate)
	assert.Equal(t, now, *inv.SentDate)

	require.NoError(t, billing.Transition(inv, domain.InvoiceStatusPaid, nil, now.Add(time.Hour)))
	assert.Equal(t, domain.InvoiceStatusPaid, inv.Status)
	require.NotNil(t, inv.PaidDate)
	assert.True(t, inv.PaidAmount.Equal(before))
	assert.True(t, inv.Total.Equal(before))
}

func TestTransition_PartialPayment(t *testing.T) {
	inv := &domain.Invoice{Status: domain.InvoiceStatusSent, Total: d("100")}
	paid := decimal.NewFromInt(60)

	require.NoError(t, billing.Transition(inv, domain.InvoiceStatusPaid, &paid, time.Now()))
	assert.True(t, inv.PaidAmount.Equal(paid))
}

func TestTransition_Rejected(t *testing.T) {
	inv := &domain.Invoice{Status: domain.InvoiceStatusPaid}

	err := billing.Transition(inv, domain.InvoiceStatusDraft, nil, time.Now())
	assert.ErrorIs(t, err, billing.ErrInvalidTransition)
	assert.Equal(t, domain.InvoiceStatusPaid, inv.Status)

	inv = &domain.Invoice{Status: domain.InvoiceStatusSent}
	err = billing.Transition(inv, domain.InvoiceStatusOverdue, nil, time.Now())
	assert.ErrorIs(t, err, billing.ErrInvalidTransition)
	assert.Equal(t, domain.InvoiceStatusSent, inv.Status)
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name   string
		status domain.InvoiceStatus
		due    *time.Time
		want   domain.InvoiceStatus
	}{
		{"sent past due", domain.InvoiceStatusSent, &past, domain.InvoiceStatusOverdue},
		{"draft past due", domain.InvoiceStatusDraft, &past, domain.InvoiceStatusOverdue},
		{"sent not yet due", domain.InvoiceStatusSent, &future, domain.InvoiceStatusSent},
		{"paid past due", domain.InvoiceStatusPaid, &past, domain.InvoiceStatusPaid},
		{"cancelled past due", domain.InvoiceStatusCancelled, &past, domain.InvoiceStatusCancelled},
		{"no due date", domain.InvoiceStatusSent, nil, domain.InvoiceStatusSent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &domain.Invoice{Status: tt.status, DueDate: tt.due}
			assert.Equal(t, tt.want, billing.EffectiveStatus(inv, now))
			assert.Equal(t, tt.status, inv.Status, "stored status must not change")
		})
	}
}

func TestNextInvoiceNumber(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{"first invoice", nil, "INV-0001"},
		{"sequential", []string{"INV-0001", "INV-0002"}, "INV-0003"},
		{"gap after delete", []string{"INV-0001", "INV-0003"}, "INV-0004"},
		{"foreign numbers counted", []string{"LEGACY-7", "INV-0001"}, "INV-0003"},
		{"past four digits", []string{"INV-9999"}, "INV-10000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, billing.NextInvoiceNumber(tt.existing))
		})
	}
}
