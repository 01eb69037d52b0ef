package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/straye-as/billing-api/internal/auth"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/mapper"
	"github.com/straye-as/billing-api/internal/repository"
	"github.com/straye-as/billing-api/internal/store"
	"go.uber.org/zap"
)

// AuthService registers users and issues session tokens
type AuthService struct {
	userRepo          *repository.UserRepository
	tokens            *auth.TokenManager
	allowRegistration bool
	logger            *zap.Logger
}

func NewAuthService(
	userRepo *repository.UserRepository,
	tokens *auth.TokenManager,
	allowRegistration bool,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		tokens:            tokens,
		allowRegistration: allowRegistration,
		logger:            logger,
	}
}

// Register creates an account and signs it in. The first account becomes admin.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	if !s.allowRegistration {
		return nil, ErrRegistrationDisabled
	}

	email := strings.TrimSpace(req.Email)
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := domain.UserRoleUser
	if s.userRepo.Count(ctx) == 0 {
		role = domain.UserRoleAdmin
	}

	user := &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("userID", user.ID),
		zap.String("role", string(user.Role)),
	)

	return s.session(user)
}

// Login checks the credentials and issues a token
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to check password: %w", err)
	}

	return s.session(user)
}

// Me returns the account behind the authenticated request
func (s *AuthService) Me(ctx context.Context, userCtx *auth.UserContext) (*domain.UserDTO, error) {
	if userCtx.IsSystem() {
		return &domain.UserDTO{
			ID:    userCtx.UserID,
			Name:  userCtx.Name,
			Email: userCtx.Email,
			Role:  userCtx.Role,
		}, nil
	}

	user, err := s.userRepo.GetByID(ctx, userCtx.UserID)
	if err != nil {
		return nil, translateStoreError(err, ErrUserNotFound, "failed to get user")
	}
	dto := mapper.ToUserDTO(user)
	return &dto, nil
}

func (s *AuthService) session(user *domain.User) (*domain.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &domain.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		User:      mapper.ToUserDTO(user),
	}, nil
}
