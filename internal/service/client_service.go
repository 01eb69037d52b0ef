package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/mapper"
	"github.com/straye-as/billing-api/internal/repository"
	"github.com/straye-as/billing-api/internal/store"
	"go.uber.org/zap"
)

type ClientService struct {
	clock
	clientRepo  *repository.ClientRepository
	projectRepo *repository.ProjectRepository
	invoiceRepo *repository.InvoiceRepository
	// foldEmailCase makes the duplicate-email check case-insensitive
	foldEmailCase bool
	logger        *zap.Logger
}

func NewClientService(
	clientRepo *repository.ClientRepository,
	projectRepo *repository.ProjectRepository,
	invoiceRepo *repository.InvoiceRepository,
	foldEmailCase bool,
	logger *zap.Logger,
) *ClientService {
	return &ClientService{
		clientRepo:    clientRepo,
		projectRepo:   projectRepo,
		invoiceRepo:   invoiceRepo,
		foldEmailCase: foldEmailCase,
		logger:        logger,
	}
}

func (s *ClientService) Create(ctx context.Context, req *domain.CreateClientRequest) (*domain.ClientDTO, error) {
	email := strings.TrimSpace(req.Email)
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.ClientStatusActive
	}

	client := &domain.Client{
		Name:          strings.TrimSpace(req.Name),
		Email:         email,
		Company:       req.Company,
		Phone:         req.Phone,
		WhatsApp:      req.WhatsApp,
		Address:       req.Address,
		Notes:         req.Notes,
		Status:        status,
		TotalProjects: 0,
		TotalRevenue:  decimal.Zero,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.Info("client created",
		zap.String("clientID", client.ID),
		zap.String("email", client.Email),
	)

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// GetByID returns the client with its projects and invoices
func (s *ClientService) GetByID(ctx context.Context, id string) (*domain.ClientDetailDTO, error) {
	client, err := s.getClient(ctx, id)
	if err != nil {
		return nil, err
	}

	projects := s.projectRepo.ListByClient(ctx, id)
	invoices := s.invoiceRepo.ListByClient(ctx, id)

	dto := mapper.ToClientDetailDTO(client, projects, invoices, s.Now())
	return &dto, nil
}

func (s *ClientService) List(ctx context.Context, filter repository.ClientFilter, page, pageSize int) (*domain.ClientListResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)
	clients, total := s.clientRepo.List(ctx, filter, page, pageSize)

	dtos := make([]domain.ClientDTO, 0, len(clients))
	for _, c := range clients {
		dtos = append(dtos, mapper.ToClientDTO(c))
	}

	return &domain.ClientListResponse{
		Clients: dtos,
		Pagination: domain.ClientPagination{
			PageInfo:     domain.NewPageInfo(page, pageSize, total),
			TotalClients: total,
		},
	}, nil
}

// Update replaces the editable fields. totalProjects and totalRevenue are kept.
func (s *ClientService) Update(ctx context.Context, id string, req *domain.UpdateClientRequest) (*domain.ClientDTO, error) {
	if _, err := s.getClient(ctx, id); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	if err := s.ensureEmailFree(ctx, email, id); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.Update(ctx, id, func(c *domain.Client) error {
		c.Name = strings.TrimSpace(req.Name)
		c.Email = email
		c.Company = req.Company
		c.Phone = req.Phone
		c.WhatsApp = req.WhatsApp
		c.Address = req.Address
		c.Notes = req.Notes
		if req.Status != "" {
			c.Status = req.Status
		}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, ErrClientNotFound, "failed to update client")
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// Delete removes the client. Its projects and invoices are left in place.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return translateStoreError(err, ErrClientNotFound, "failed to delete client")
	}

	orphans := len(s.projectRepo.ListByClient(ctx, id)) + len(s.invoiceRepo.ListByClient(ctx, id))
	s.logger.Info("client deleted",
		zap.String("clientID", id),
		zap.Int("orphanedRecords", orphans),
	)
	return nil
}

// RefreshStats recomputes totalProjects and totalRevenue from the client's projects
func (s *ClientService) RefreshStats(ctx context.Context, id string) (*domain.ClientDTO, error) {
	if _, err := s.getClient(ctx, id); err != nil {
		return nil, err
	}

	count, revenue := s.computeStats(ctx, id)
	client, err := s.clientRepo.Update(ctx, id, func(c *domain.Client) error {
		c.TotalProjects = count
		c.TotalRevenue = revenue
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, ErrClientNotFound, "failed to refresh client stats")
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// RefreshAllStats recomputes the derived counters of every client and returns how many changed
func (s *ClientService) RefreshAllStats(ctx context.Context) (int, error) {
	changed := 0
	for _, c := range s.clientRepo.All(ctx) {
		count, revenue := s.computeStats(ctx, c.ID)
		if c.TotalProjects == count && c.TotalRevenue.Equal(revenue) {
			continue
		}
		if _, err := s.RefreshStats(ctx, c.ID); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

func (s *ClientService) computeStats(ctx context.Context, clientID string) (int, decimal.Decimal) {
	projects := s.projectRepo.ListByClient(ctx, clientID)
	revenue := decimal.Zero
	for _, p := range projects {
		if p.Status == domain.ProjectStatusCompleted {
			revenue = revenue.Add(p.Amount)
		}
	}
	return len(projects), revenue
}

func (s *ClientService) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	existing, err := s.clientRepo.GetByEmail(ctx, email, s.foldEmailCase)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing.ID == exceptID {
		return nil
	}
	return ErrDuplicateEmail
}

func (s *ClientService) getClient(ctx context.Context, id string) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, ErrClientNotFound, "failed to get client")
	}
	return client, nil
}
