package repository

import (
	"context"
	"strings"

	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/store"
)

type UserRepository struct {
	users *store.Collection[*domain.User]
}

func NewUserRepository(s *store.Store) *UserRepository {
	return &UserRepository{users: store.NewCollection[*domain.User](s, CollectionUsers)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.users.Create(ctx, user)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.users.FindByID(ctx, id)
}

// GetByEmail matches emails ignoring case
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.users.FindOne(ctx, func(u *domain.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}

func (r *UserRepository) Count(ctx context.Context) int {
	return r.users.Count(ctx)
}
