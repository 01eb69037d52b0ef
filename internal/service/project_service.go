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

type ProjectService struct {
	clock
	projectRepo *repository.ProjectRepository
	clientRepo  *repository.ClientRepository
	logger      *zap.Logger
}

func NewProjectService(
	projectRepo *repository.ProjectRepository,
	clientRepo *repository.ClientRepository,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		clientRepo:  clientRepo,
		logger:      logger,
	}
}

// Create stores a new project for an existing client and then bumps the
// client's counters in a second, independent write. If that second write
// fails the project is kept and the drift is logged; RefreshStats repairs it.
func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, req.ClientID)
	if err != nil {
		return nil, translateStoreError(err, ErrClientNotFound, "failed to get client")
	}

	status := req.Status
	if status == "" {
		status = domain.ProjectStatusPending
	}
	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	project := &domain.Project{
		Title:       strings.TrimSpace(req.Title),
		ClientID:    client.ID,
		Description: req.Description,
		StartDate:   req.StartDate.TimePtr(),
		EndDate:     req.EndDate.TimePtr(),
		Amount:      req.Amount,
		Status:      status,
		Priority:    priority,
		Progress:    req.Progress,
		Tags:        normalizeTags(req.Tags),
		Milestones:  toMilestones(req.Milestones),
	}
	if status == domain.ProjectStatusCompleted {
		now := s.Now()
		project.CompletedDate = &now
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.adjustClient(ctx, client.ID, 1, revenueContribution(project))

	s.logger.Info("project created",
		zap.String("projectID", project.ID),
		zap.String("clientID", client.ID),
	)

	dto := mapper.ToProjectDTO(project, client.Name, s.Now())
	return &dto, nil
}

func (s *ProjectService) GetByID(ctx context.Context, id string) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, ErrProjectNotFound, "failed to get project")
	}

	dto := mapper.ToProjectDTO(project, s.clientName(ctx, project.ClientID), s.Now())
	return &dto, nil
}

func (s *ProjectService) List(ctx context.Context, filter repository.ProjectFilter, page, pageSize int) (*domain.ProjectListResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)
	projects, total := s.projectRepo.List(ctx, filter, page, pageSize)

	names := clientNames(s.clientRepo.All(ctx))
	now := s.Now()
	dtos := make([]domain.ProjectDTO, 0, len(projects))
	for _, p := range projects {
		dtos = append(dtos, mapper.ToProjectDTO(p, names[p.ClientID], now))
	}

	return &domain.ProjectListResponse{
		Projects: dtos,
		Pagination: domain.ProjectPagination{
			PageInfo:      domain.NewPageInfo(page, pageSize, total),
			TotalProjects: total,
		},
	}, nil
}

// Update replaces the project fields. Moving into completed records the
// completion date the first time only. Client counters follow the change in
// revenue contribution and, when the project moves to another client, the
// project count moves with it.
func (s *ProjectService) Update(ctx context.Context, id string, req *domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	existing, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, ErrProjectNotFound, "failed to get project")
	}

	client, err := s.clientRepo.GetByID(ctx, req.ClientID)
	if err != nil {
		return nil, translateStoreError(err, ErrClientNotFound, "failed to get client")
	}

	oldClientID := existing.ClientID
	oldContribution := revenueContribution(existing)
	now := s.Now()

	project, err := s.projectRepo.Update(ctx, id, func(p *domain.Project) error {
		p.Title = strings.TrimSpace(req.Title)
		p.ClientID = client.ID
		p.Description = req.Description
		p.StartDate = req.StartDate.TimePtr()
		p.EndDate = req.EndDate.TimePtr()
		p.Amount = req.Amount
		p.Status = req.Status
		p.Priority = req.Priority
		p.Progress = req.Progress
		p.Tags = normalizeTags(req.Tags)
		p.Milestones = toMilestones(req.Milestones)
		if p.Status == domain.ProjectStatusCompleted && p.CompletedDate == nil {
			p.CompletedDate = &now
		}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, ErrProjectNotFound, "failed to update project")
	}

	newContribution := revenueContribution(project)
	if oldClientID == project.ClientID {
		if delta := newContribution.Sub(oldContribution); !delta.IsZero() {
			s.adjustClient(ctx, project.ClientID, 0, delta)
		}
	} else {
		s.adjustClient(ctx, oldClientID, -1, oldContribution.Neg())
		s.adjustClient(ctx, project.ClientID, 1, newContribution)
	}

	if existing.Status != domain.ProjectStatusCompleted && project.Status == domain.ProjectStatusCompleted {
		s.logger.Info("project completed",
			zap.String("projectID", project.ID),
			zap.String("clientID", project.ClientID),
		)
	}

	dto := mapper.ToProjectDTO(project, client.Name, now)
	return &dto, nil
}

// Delete removes the project and takes it off its client's counters
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return translateStoreError(err, ErrProjectNotFound, "failed to get project")
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return translateStoreError(err, ErrProjectNotFound, "failed to delete project")
	}

	s.adjustClient(ctx, project.ClientID, -1, revenueContribution(project).Neg())
	return nil
}

// adjustClient applies counter deltas to a client. Failures are logged, not
// returned, since the project write they follow has already happened.
func (s *ProjectService) adjustClient(ctx context.Context, clientID string, projects int, revenue decimal.Decimal) {
	_, err := s.clientRepo.Update(ctx, clientID, func(c *domain.Client) error {
		c.TotalProjects += projects
		if c.TotalProjects < 0 {
			c.TotalProjects = 0
		}
		c.TotalRevenue = c.TotalRevenue.Add(revenue)
		if c.TotalRevenue.IsNegative() {
			c.TotalRevenue = decimal.Zero
		}
		return nil
	})
	if err != nil {
		level := s.logger.Warn
		if errors.Is(err, store.ErrNotFound) {
			level = s.logger.Info
		}
		level("client counters not updated",
			zap.String("clientID", clientID),
			zap.Int("projectsDelta", projects),
			zap.String("revenueDelta", revenue.String()),
			zap.Error(err),
		)
	}
}

func (s *ProjectService) clientName(ctx context.Context, clientID string) string {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return ""
	}
	return client.Name
}

// revenueContribution is what a project adds to its client's totalRevenue
func revenueContribution(p *domain.Project) decimal.Decimal {
	if p.Status == domain.ProjectStatusCompleted {
		return p.Amount
	}
	return decimal.Zero
}

func clientNames(clients []*domain.Client) map[string]string {
	names := make(map[string]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}
	return names
}

// normalizeTags trims tags and drops empties and duplicates, keeping first-seen order
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func toMilestones(reqs []domain.MilestoneRequest) []domain.Milestone {
	out := make([]domain.Milestone, 0, len(reqs))
	for _, m := range reqs {
		out = append(out, domain.Milestone{
			Title:     strings.TrimSpace(m.Title),
			DueDate:   m.DueDate.TimePtr(),
			Completed: m.Completed,
		})
	}
	return out
}
