package repository

import (
	"context"
	"strings"

	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/store"
)

// ClientFilter narrows client listings
type ClientFilter struct {
	Search string
	Status domain.ClientStatus
}

type ClientRepository struct {
	clients *store.Collection[*domain.Client]
}

func NewClientRepository(s *store.Store) *ClientRepository {
	return &ClientRepository{clients: store.NewCollection[*domain.Client](s, CollectionClients)}
}

// Create assigns the id and timestamps on client and persists it
func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	_, err := r.clients.Create(ctx, client)
	return err
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	return r.clients.FindByID(ctx, id)
}

// GetByEmail finds a client by email. With foldCase the match ignores case,
// otherwise it is exact.
func (r *ClientRepository) GetByEmail(ctx context.Context, email string, foldCase bool) (*domain.Client, error) {
	return r.clients.FindOne(ctx, func(c *domain.Client) bool {
		if foldCase {
			return strings.EqualFold(c.Email, email)
		}
		return c.Email == email
	})
}

// Update runs mutate against the stored client and writes the collection back
func (r *ClientRepository) Update(ctx context.Context, id string, mutate func(*domain.Client) error) (*domain.Client, error) {
	return r.clients.Update(ctx, id, mutate)
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	return r.clients.Delete(ctx, id)
}

func (r *ClientRepository) All(ctx context.Context) []*domain.Client {
	return r.clients.GetAll(ctx)
}

// List returns one page of matching clients, newest first, and the total match count
func (r *ClientRepository) List(ctx context.Context, filter ClientFilter, page, pageSize int) ([]*domain.Client, int) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	matches := r.clients.Find(ctx, func(c *domain.Client) bool {
		if filter.Status != "" && c.Status != filter.Status {
			return false
		}
		if search == "" {
			return true
		}
		return containsFold(c.Name, search) || containsFold(c.Email, search) || containsFold(c.Company, search)
	})

	newestFirst(matches)
	return paginate(matches, page, pageSize), len(matches)
}
