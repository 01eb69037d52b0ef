package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/straye-as/billing-api/internal/billing"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/mapper"
	"github.com/straye-as/billing-api/internal/repository"
	"go.uber.org/zap"
)

type InvoiceService struct {
	clock
	invoiceRepo *repository.InvoiceRepository
	clientRepo  *repository.ClientRepository
	projectRepo *repository.ProjectRepository
	logger      *zap.Logger
}

func NewInvoiceService(
	invoiceRepo *repository.InvoiceRepository,
	clientRepo *repository.ClientRepository,
	projectRepo *repository.ProjectRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// Create stores a new draft invoice with computed totals. The number is
// taken from a snapshot of the stored invoices, see billing.NextInvoiceNumber.
func (s *InvoiceService) Create(ctx context.Context, req *domain.CreateInvoiceRequest) (*domain.InvoiceDTO, error) {
	client, err := s.resolveParties(ctx, req.ClientID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	invoice := &domain.Invoice{
		ClientID:  client.ID,
		ProjectID: req.ProjectID,
		Status:    domain.InvoiceStatusDraft,
		DueDate:   req.DueDate.TimePtr(),
		Notes:     req.Notes,
	}
	if err := billing.Apply(invoice, toInvoiceItems(req.Items), req.Discount, req.Tax); err != nil {
		return nil, invalidInput(err)
	}

	invoice.InvoiceNumber = billing.NextInvoiceNumber(s.invoiceRepo.Numbers(ctx))

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logger.Info("invoice created",
		zap.String("invoiceID", invoice.ID),
		zap.String("invoiceNumber", invoice.InvoiceNumber),
		zap.String("total", invoice.Total.String()),
	)

	dto := mapper.ToInvoiceDTO(invoice, client.Name, s.Now())
	return &dto, nil
}

func (s *InvoiceService) GetByID(ctx context.Context, id string) (*domain.InvoiceDTO, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, ErrInvoiceNotFound, "failed to get invoice")
	}

	dto := mapper.ToInvoiceDTO(invoice, s.clientName(ctx, invoice.ClientID), s.Now())
	return &dto, nil
}

func (s *InvoiceService) List(ctx context.Context, filter repository.InvoiceFilter, page, pageSize int) (*domain.InvoiceListResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)
	now := s.Now()
	invoices, total := s.invoiceRepo.List(ctx, filter, now, page, pageSize)

	names := clientNames(s.clientRepo.All(ctx))
	dtos := make([]domain.InvoiceDTO, 0, len(invoices))
	for _, inv := range invoices {
		dtos = append(dtos, mapper.ToInvoiceDTO(inv, names[inv.ClientID], now))
	}

	return &domain.InvoiceListResponse{
		Invoices: dtos,
		Pagination: domain.InvoicePagination{
			PageInfo:      domain.NewPageInfo(page, pageSize, total),
			TotalInvoices: total,
		},
	}, nil
}

// Update is a full edit of an unpaid, uncancelled invoice. Items, discount
// and tax are revalidated and the totals recomputed; number and status stay.
func (s *InvoiceService) Update(ctx context.Context, id string, req *domain.UpdateInvoiceRequest) (*domain.InvoiceDTO, error) {
	if _, err := s.invoiceRepo.GetByID(ctx, id); err != nil {
		return nil, translateStoreError(err, ErrInvoiceNotFound, "failed to get invoice")
	}

	client, err := s.resolveParties(ctx, req.ClientID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	items := toInvoiceItems(req.Items)
	invoice, err := s.invoiceRepo.Update(ctx, id, func(inv *domain.Invoice) error {
		if !billing.IsEditable(inv) {
			return ErrInvoiceLocked
		}
		if err := billing.Apply(inv, items, req.Discount, req.Tax); err != nil {
			return invalidInput(err)
		}
		inv.ClientID = client.ID
		inv.ProjectID = req.ProjectID
		inv.DueDate = req.DueDate.TimePtr()
		inv.Notes = req.Notes
		return nil
	})
	if err != nil {
		return nil, s.mapUpdateError(err)
	}

	dto := mapper.ToInvoiceDTO(invoice, client.Name, s.Now())
	return &dto, nil
}

// UpdateStatus moves the invoice through its lifecycle. Totals are not recomputed.
func (s *InvoiceService) UpdateStatus(ctx context.Context, id string, req *domain.UpdateInvoiceStatusRequest) (*domain.InvoiceDTO, error) {
	if req.PaidAmount != nil && req.PaidAmount.IsNegative() {
		return nil, invalidInput(errors.New("paidAmount must not be negative"))
	}

	now := s.Now()
	var from domain.InvoiceStatus
	invoice, err := s.invoiceRepo.Update(ctx, id, func(inv *domain.Invoice) error {
		from = inv.Status
		if err := billing.Transition(inv, req.Status, req.PaidAmount, now); err != nil {
			if errors.Is(err, billing.ErrInvalidTransition) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, inv.Status, req.Status)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.mapUpdateError(err)
	}

	s.logger.Info("invoice status changed",
		zap.String("invoiceID", invoice.ID),
		zap.String("from", string(from)),
		zap.String("to", string(invoice.Status)),
	)

	dto := mapper.ToInvoiceDTO(invoice, s.clientName(ctx, invoice.ClientID), now)
	return &dto, nil
}

// Delete removes a draft invoice. Any other status is a conflict.
func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return translateStoreError(err, ErrInvoiceNotFound, "failed to get invoice")
	}

	if !billing.IsDeletable(invoice) {
		return ErrInvoiceNotDraft
	}

	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return translateStoreError(err, ErrInvoiceNotFound, "failed to delete invoice")
	}
	return nil
}

// resolveParties checks that the client exists and, when given, that the
// project exists and belongs to that client
func (s *InvoiceService) resolveParties(ctx context.Context, clientID, projectID string) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, translateStoreError(err, ErrClientNotFound, "failed to get client")
	}

	if projectID != "" {
		project, err := s.projectRepo.GetByID(ctx, projectID)
		if err != nil {
			return nil, translateStoreError(err, ErrProjectNotFound, "failed to get project")
		}
		if project.ClientID != client.ID {
			return nil, ErrProjectClientMatch
		}
	}

	return client, nil
}

func (s *InvoiceService) mapUpdateError(err error) error {
	switch {
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidInput):
		return err
	default:
		return translateStoreError(err, ErrInvoiceNotFound, "failed to update invoice")
	}
}

func (s *InvoiceService) clientName(ctx context.Context, clientID string) string {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return ""
	}
	return client.Name
}

func toInvoiceItems(reqs []domain.InvoiceItemRequest) []domain.InvoiceItem {
	items := make([]domain.InvoiceItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, domain.InvoiceItem{
			Description: r.Description,
			Quantity:    r.Quantity,
			Rate:        r.Rate,
		})
	}
	return items
}
