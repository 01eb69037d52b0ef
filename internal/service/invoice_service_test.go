package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/repository"
	"github.com/straye-as/billing-api/internal/service"
	"github.com/straye-as/billing-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("computes totals and starts as draft", func(t *testing.T) {
		s := newServices(t, false)
		acme := s.createClient(t, "Acme", "ops@acme.test")

		inv, err := s.invoices.Create(ctx, &domain.CreateInvoiceRequest{
			ClientID: acme.ID,
			Items:    []domain.InvoiceItemRequest{item("Design", 2, 500), item("Hosting", 1, 250)},
			Discount: decimal.NewFromInt(10),
			Tax:      decimal.NewFromInt(25),
		})
		require.NoError(t, err)

		assert.Equal(t, "INV-0001", inv.InvoiceNumber)
		assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
		assert.Equal(t, "Acme", inv.ClientName)
		assert.Equal(t, 1250.0, inv.Subtotal)
		assert.Equal(t, 125.0, inv.DiscountAmount)
		assert.Equal(t, 281.25, inv.TaxAmount)
		assert.Equal(t, 1406.25, inv.Total)
		require.Len(t, inv.Items, 2)
		assert.Equal(t, 1000.0, inv.Items[0].Amount)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		s := newServices(t, false)
		acme := s.createClient(t, "Acme", "ops@acme.test")

		_, err := s.invoices.Create(ctx, &domain.CreateInvoiceRequest{ClientID: acme.ID})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
		assert.Empty(t, s.env.Invoices.All(ctx))
	})

	t.Run("rejects out of range percentages", func(t *testing.T) {
		s := newServices(t, false)
		acme := s.createClient(t, "Acme", "ops@acme.test")

		_, err := s.invoices.Create(ctx, &domain.CreateInvoiceRequest{
			ClientID: acme.ID,
			Items:    []domain.InvoiceItemRequest{item("Design", 1, 100)},
			Tax:      decimal.NewFromInt(101),
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("unknown client", func(t *testing.T) {
		s := newServices(t, false)

		_, err := s.invoices.Create(ctx, &domain.CreateInvoiceRequest{
			ClientID: "missing",
			Items:    []domain.InvoiceItemRequest{item("Design", 1, 100)},
		})
		assert.ErrorIs(t, err, service.ErrClientNotFound)
	})

	t.Run("project must belong to the client", func(t *testing.T) {
		s := newServices(t, false)
		acme := s.createClient(t, "Acme", "ops@acme.test")
		globex := s.createClient(t, "Globex", "hi@globex.test")
		p := s.createProject(t, globex.ID, 100, "")

		_, err := s.invoices.Create(ctx, &domain.CreateInvoiceRequest{
			ClientID:  acme.ID,
			ProjectID: p.ID,
			Items:     []domain.InvoiceItemRequest{item("Design", 1, 100)},
		})
		assert.ErrorIs(t, err, service.ErrProjectClientMatch)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestInvoiceService_Numbering(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, false)
	acme := s.createClient(t, "Acme", "ops@acme.test")

	first := s.createInvoice(t, acme.ID, nil)
	second := s.createInvoice(t, acme.ID, nil)
	third := s.createInvoice(t, acme.ID, nil)
	assert.Equal(t, "INV-0001", first.InvoiceNumber)
	assert.Equal(t, "INV-0002", second.InvoiceNumber)
	assert.Equal(t, "INV-0003", third.InvoiceNumber)

	require.NoError(t, s.invoices.Delete(ctx, second.ID))

	fourth := s.createInvoice(t, acme.ID, nil)
	assert.Equal(t, "INV-0004", fourth.InvoiceNumber)
}

func TestInvoiceService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("draft to sent to paid keeps totals", func(t *testing.T) {
		s := newServices(t, false)
		acme := s.createClient(t, "Acme", "ops@acme.test")
		inv := s.createInvoice(t, acme.ID, nil)

		sent, err := s.invoices.UpdateStatus(ctx, inv.ID, &domain.UpdateInvoiceStatusRequest{Status: domain.InvoiceStatusSent})
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusSent, sent.Status)
		assert.NotEmpty(t, sent.SentDate)

		paid, err := s.invoices.UpdateStatus(ctx, inv.ID, &domain.UpdateInvoiceStatusRequest{Status: domain.InvoiceStatusPaid})
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
		assert.NotEmpty(t, paid.PaidDate)
		assert.Equal(t, inv.Total, paid.Total)
		assert.Equal(t, inv.Subtotal, paid.Subtotal)
		assert.Equal(t, inv.Total, paid.PaidAmount)
	})

	t.Run("partial paid amount", func(t *testing.T) {
		s := newServices(t, false)
		acme := s.createClient(t, "Acme", "ops@acme.test")
		inv := s.createInvoice(t, acme.ID, nil)
		_, err := s.invoices.UpdateStatus(ctx, inv.ID, &domain.UpdateInvoiceStatusRequest{Status: domain.InvoiceStatusSent})
		require.NoError(t, err)

		amount := decimal.NewFromInt(400)
		paid, err := s.invoices.UpdateStatus(ctx, inv.ID, &domain.UpdateInvoiceStatusRequest{
			Status:     domain.InvoiceStatusPaid,
			PaidAmount: &amount,
		})
		require.NoError(t, err)
		assert.Equal(t, 400.0, paid.PaidAmount)
		assert.Equal(t, 1000.0, paid.Total)
	})

	t.Run("invalid transition", func(t *testing.T) {
		s := newServices(t, false)
		acme := s.createClient(t, "Acme", "ops@acme.test")
		inv := s.createInvoice(t, acme.ID, nil)

		_, err := s.invoices.UpdateStatus(ctx, inv.ID, &domain.UpdateInvoiceStatusRequest{Status: domain.InvoiceStatusPaid})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
		assert.ErrorIs(t, err, service.ErrConflict)

		stored, err := s.env.Invoices.GetByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusDraft, stored.Status)
	})

	t.Run("negative paid amount", func(t *testing.T) {
		s := newServices(t, false)
		acme := s.createClient(t, "Acme", "ops@acme.test")
		inv := s.createInvoice(t, acme.ID, nil)

		amount := decimal.NewFromInt(-1)
		_, err := s.invoices.UpdateStatus(ctx, inv.ID, &domain.UpdateInvoiceStatusRequest{
			Status:     domain.InvoiceStatusPaid,
			PaidAmount: &amount,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("missing invoice", func(t *testing.T) {
		s := newServices(t, false)
		_, err := s.invoices.UpdateStatus(ctx, "missing", &domain.UpdateInvoiceStatusRequest{Status: domain.InvoiceStatusSent})
		assert.ErrorIs(t, err, service.ErrInvoiceNotFound)
	})
}

func TestInvoiceService_Update(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, false)
	acme := s.createClient(t, "Acme", "ops@acme.test")

	t.Run("recomputes totals for a sent invoice", func(t *testing.T) {
		inv := s.createInvoice(t, acme.ID, nil)
		_, err := s.invoices.UpdateStatus(ctx, inv.ID, &domain.UpdateInvoiceStatusRequest{Status: domain.InvoiceStatusSent})
		require.NoError(t, err)

		updated, err := s.invoices.Update(ctx, inv.ID, &domain.UpdateInvoiceRequest{
			ClientID: acme.ID,
			Items:    []domain.InvoiceItemRequest{item("Design", 3, 100)},
			Tax:      decimal.NewFromInt(10),
		})
		require.NoError(t, err)
		assert.Equal(t, 330.0, updated.Total)
		assert.Equal(t, inv.InvoiceNumber, updated.InvoiceNumber)
		assert.Equal(t, domain.InvoiceStatusSent, updated.Status)
	})

	t.Run("paid invoices are locked", func(t *testing.T) {
		inv := s.createInvoice(t, acme.ID, nil)
		_, err := s.invoices.UpdateStatus(ctx, inv.ID, &domain.UpdateInvoiceStatusRequest{Status: domain.InvoiceStatusSent})
		require.NoError(t, err)
		_, err = s.invoices.UpdateStatus(ctx, inv.ID, &domain.UpdateInvoiceStatusRequest{Status: domain.InvoiceStatusPaid})
		require.NoError(t, err)

		_, err = s.invoices.Update(ctx, inv.ID, &domain.UpdateInvoiceRequest{
			ClientID: acme.ID,
			Items:    []domain.InvoiceItemRequest{item("Design", 1, 1)},
		})
		assert.ErrorIs(t, err, service.ErrInvoiceLocked)
	})

	t.Run("empty items leave the invoice untouched", func(t *testing.T) {
		inv := s.createInvoice(t, acme.ID, nil)

		_, err := s.invoices.Update(ctx, inv.ID, &domain.UpdateInvoiceRequest{ClientID: acme.ID})
		assert.ErrorIs(t, err, service.ErrInvalidInput)

		stored, err := s.env.Invoices.GetByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Items, 1)
	})
}

func TestInvoiceService_Delete(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, false)
	acme := s.createClient(t, "Acme", "ops@acme.test")

	t.Run("draft", func(t *testing.T) {
		inv := s.createInvoice(t, acme.ID, nil)
		require.NoError(t, s.invoices.Delete(ctx, inv.ID))
		_, err := s.invoices.GetByID(ctx, inv.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("sent is rejected", func(t *testing.T) {
		inv := s.createInvoice(t, acme.ID, nil)
		_, err := s.invoices.UpdateStatus(ctx, inv.ID, &domain.UpdateInvoiceStatusRequest{Status: domain.InvoiceStatusSent})
		require.NoError(t, err)

		err = s.invoices.Delete(ctx, inv.ID)
		assert.ErrorIs(t, err, service.ErrInvoiceNotDraft)
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("missing", func(t *testing.T) {
		assert.ErrorIs(t, s.invoices.Delete(ctx, "missing"), service.ErrInvoiceNotFound)
	})
}

func TestInvoiceService_EffectiveOverdue(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, false)
	acme := s.createClient(t, "Acme", "ops@acme.test")

	late := s.createInvoice(t, acme.ID, testutil.Ptr(testutil.Date(2024, time.March, 1)))
	s.createInvoice(t, acme.ID, testutil.Ptr(testutil.Date(2024, time.April, 1)))
	_, err := s.invoices.UpdateStatus(ctx, late.ID, &domain.UpdateInvoiceStatusRequest{Status: domain.InvoiceStatusSent})
	require.NoError(t, err)

	got, err := s.invoices.GetByID(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOverdue, got.Status)

	stored, err := s.env.Invoices.GetByID(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, stored.Status)

	resp, err := s.invoices.List(ctx, repository.InvoiceFilter{Status: domain.InvoiceStatusOverdue}, 1, 10)
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)
	assert.Equal(t, late.ID, resp.Invoices[0].ID)
}
