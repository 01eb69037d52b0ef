package repository

import (
	"context"
	"strings"
	"time"

	"github.com/straye-as/billing-api/internal/billing"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/store"
)

// InvoiceFilter narrows invoice listings. Status is matched against the
// effective status, so "overdue" selects unpaid invoices past their due date.
type InvoiceFilter struct {
	Search    string
	Status    domain.InvoiceStatus
	ClientID  string
	ProjectID string
}

type InvoiceRepository struct {
	invoices *store.Collection[*domain.Invoice]
}

func NewInvoiceRepository(s *store.Store) *InvoiceRepository {
	return &InvoiceRepository{invoices: store.NewCollection[*domain.Invoice](s, CollectionInvoices)}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	_, err := r.invoices.Create(ctx, invoice)
	return err
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	return r.invoices.FindByID(ctx, id)
}

func (r *InvoiceRepository) Update(ctx context.Context, id string, mutate func(*domain.Invoice) error) (*domain.Invoice, error) {
	return r.invoices.Update(ctx, id, mutate)
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	return r.invoices.Delete(ctx, id)
}

func (r *InvoiceRepository) All(ctx context.Context) []*domain.Invoice {
	return r.invoices.GetAll(ctx)
}

// Numbers returns the invoice numbers currently stored
func (r *InvoiceRepository) Numbers(ctx context.Context) []string {
	invoices := r.invoices.GetAll(ctx)
	numbers := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		numbers = append(numbers, inv.InvoiceNumber)
	}
	return numbers
}

func (r *InvoiceRepository) ListByClient(ctx context.Context, clientID string) []*domain.Invoice {
	invoices := r.invoices.Find(ctx, func(inv *domain.Invoice) bool {
		return inv.ClientID == clientID
	})
	newestFirst(invoices)
	return invoices
}

// List returns one page of matching invoices, newest first, and the total match count
func (r *InvoiceRepository) List(ctx context.Context, filter InvoiceFilter, now time.Time, page, pageSize int) ([]*domain.Invoice, int) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	matches := r.invoices.Find(ctx, func(inv *domain.Invoice) bool {
		if filter.Status != "" && billing.EffectiveStatus(inv, now) != filter.Status {
			return false
		}
		if filter.ClientID != "" && inv.ClientID != filter.ClientID {
			return false
		}
		if filter.ProjectID != "" && inv.ProjectID != filter.ProjectID {
			return false
		}
		if search == "" {
			return true
		}
		if containsFold(inv.InvoiceNumber, search) || containsFold(inv.Notes, search) {
			return true
		}
		for _, item := range inv.Items {
			if containsFold(item.Description, search) {
				return true
			}
		}
		return false
	})

	newestFirst(matches)
	return paginate(matches, page, pageSize), len(matches)
}
