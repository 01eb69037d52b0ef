package repository

import (
	"context"
	"strings"

	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/store"
)

// ProjectFilter narrows project listings
type ProjectFilter struct {
	Search   string
	Status   domain.ProjectStatus
	Priority domain.Priority
	ClientID string
}

type ProjectRepository struct {
	projects *store.Collection[*domain.Project]
}

func NewProjectRepository(s *store.Store) *ProjectRepository {
	return &ProjectRepository{projects: store.NewCollection[*domain.Project](s, CollectionProjects)}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	_, err := r.projects.Create(ctx, project)
	return err
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return r.projects.FindByID(ctx, id)
}

func (r *ProjectRepository) Update(ctx context.Context, id string, mutate func(*domain.Project) error) (*domain.Project, error) {
	return r.projects.Update(ctx, id, mutate)
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return r.projects.Delete(ctx, id)
}

func (r *ProjectRepository) All(ctx context.Context) []*domain.Project {
	return r.projects.GetAll(ctx)
}

func (r *ProjectRepository) ListByClient(ctx context.Context, clientID string) []*domain.Project {
	projects := r.projects.Find(ctx, func(p *domain.Project) bool {
		return p.ClientID == clientID
	})
	newestFirst(projects)
	return projects
}

// List returns one page of matching projects, newest first, and the total match count
func (r *ProjectRepository) List(ctx context.Context, filter ProjectFilter, page, pageSize int) ([]*domain.Project, int) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	matches := r.projects.Find(ctx, func(p *domain.Project) bool {
		if filter.Status != "" && p.Status != filter.Status {
			return false
		}
		if filter.Priority != "" && p.Priority != filter.Priority {
			return false
		}
		if filter.ClientID != "" && p.ClientID != filter.ClientID {
			return false
		}
		if search == "" {
			return true
		}
		if containsFold(p.Title, search) || containsFold(p.Description, search) {
			return true
		}
		for _, tag := range p.Tags {
			if containsFold(tag, search) {
				return true
			}
		}
		return false
	})

	newestFirst(matches)
	return paginate(matches, page, pageSize), len(matches)
}
