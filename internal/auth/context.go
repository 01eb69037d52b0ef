package auth

import (
	"context"

	"github.com/straye-as/billing-api/internal/domain"
)

// SystemUserID identifies requests authenticated with the API key
const SystemUserID = "system"

// UserContext holds authenticated user information
type UserContext struct {
	UserID string
	Name   string
	Email  string
	Role   domain.UserRole
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// IsAdmin reports whether the user may run administrative operations
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.UserRoleAdmin
}

// IsSystem reports whether the request was authenticated with the API key
func (u *UserContext) IsSystem() bool {
	return u.UserID == SystemUserID
}

// SystemUser is the identity attached to API key requests
func SystemUser() *UserContext {
	return &UserContext{
		UserID: SystemUserID,
		Name:   "System",
		Email:  "system@localhost",
		Role:   domain.UserRoleAdmin,
	}
}
