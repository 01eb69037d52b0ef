package service

import (
	"context"
	"fmt"
	"time"

	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/mapper"
	"github.com/straye-as/billing-api/internal/repository"
	"go.uber.org/zap"
)

// DefaultRetention is how long a notification lives when no retention is configured
const DefaultRetention = 30 * 24 * time.Hour

// NotificationService handles business logic for notifications
type NotificationService struct {
	clock
	notificationRepo *repository.NotificationRepository
	retention        time.Duration
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService instance
func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	retention time.Duration,
	logger *zap.Logger,
) *NotificationService {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		retention:        retention,
		logger:           logger,
	}
}

// Emit stores n as a new unread notification that expires after the retention window
func (s *NotificationService) Emit(ctx context.Context, n *domain.Notification) error {
	if n.Priority == "" {
		n.Priority = domain.PriorityMedium
	}
	n.Status = domain.NotificationStatusUnread
	n.ExpiresAt = s.Now().Add(s.retention)

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// RecordDelivery writes the per-channel delivery outcome back onto a notification
func (s *NotificationService) RecordDelivery(ctx context.Context, id string, channels domain.NotificationChannels) error {
	_, err := s.notificationRepo.Update(ctx, id, func(n *domain.Notification) error {
		n.Channels = channels
		return nil
	})
	if err != nil {
		return translateStoreError(err, ErrNotificationNotFound, "failed to record delivery")
	}
	return nil
}

// Create stores a manually submitted notification
func (s *NotificationService) Create(ctx context.Context, req *domain.CreateNotificationRequest) (*domain.NotificationDTO, error) {
	n := &domain.Notification{
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		ClientID:  req.ClientID,
		ProjectID: req.ProjectID,
		InvoiceID: req.InvoiceID,
		Priority:  req.Priority,
	}
	if err := s.Emit(ctx, n); err != nil {
		return nil, err
	}

	dto := mapper.ToNotificationDTO(n)
	return &dto, nil
}

func (s *NotificationService) List(ctx context.Context, filter repository.NotificationFilter, page, pageSize int) (*domain.NotificationListResponse, error) {
	page, pageSize = repository.NormalizePage(page, pageSize)
	notifications, total := s.notificationRepo.List(ctx, filter, page, pageSize)

	dtos := make([]domain.NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		dtos = append(dtos, mapper.ToNotificationDTO(n))
	}

	return &domain.NotificationListResponse{
		Notifications: dtos,
		Pagination: domain.NotificationPagination{
			PageInfo:           domain.NewPageInfo(page, pageSize, total),
			TotalNotifications: total,
		},
		UnreadCount: s.notificationRepo.CountUnread(ctx),
	}, nil
}

func (s *NotificationService) GetByID(ctx context.Context, id string) (*domain.NotificationDTO, error) {
	n, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, ErrNotificationNotFound, "failed to get notification")
	}
	dto := mapper.ToNotificationDTO(n)
	return &dto, nil
}

func (s *NotificationService) Count(ctx context.Context) (*domain.NotificationCountDTO, error) {
	return &domain.NotificationCountDTO{
		Unread: s.notificationRepo.CountUnread(ctx),
		Total:  s.notificationRepo.Count(ctx),
	}, nil
}

// MarkAsRead marks one notification read. Archived notifications stay archived.
func (s *NotificationService) MarkAsRead(ctx context.Context, id string) (*domain.NotificationDTO, error) {
	now := s.Now()
	n, err := s.notificationRepo.Update(ctx, id, func(n *domain.Notification) error {
		if n.ReadAt == nil {
			n.ReadAt = &now
		}
		if n.Status == domain.NotificationStatusUnread {
			n.Status = domain.NotificationStatusRead
		}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, ErrNotificationNotFound, "failed to mark notification as read")
	}
	dto := mapper.ToNotificationDTO(n)
	return &dto, nil
}

// MarkAllAsRead marks every unread notification read and returns how many changed
func (s *NotificationService) MarkAllAsRead(ctx context.Context) (int, error) {
	marked, err := s.notificationRepo.MarkAllAsRead(ctx, s.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return marked, nil
}

func (s *NotificationService) Archive(ctx context.Context, id string) (*domain.NotificationDTO, error) {
	now := s.Now()
	n, err := s.notificationRepo.Update(ctx, id, func(n *domain.Notification) error {
		if n.ReadAt == nil {
			n.ReadAt = &now
		}
		n.Status = domain.NotificationStatusArchived
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, ErrNotificationNotFound, "failed to archive notification")
	}
	dto := mapper.ToNotificationDTO(n)
	return &dto, nil
}

func (s *NotificationService) Delete(ctx context.Context, id string) error {
	if err := s.notificationRepo.Delete(ctx, id); err != nil {
		return translateStoreError(err, ErrNotificationNotFound, "failed to delete notification")
	}
	return nil
}

// DeleteExpired purges notifications past their expiry and returns how many were removed
func (s *NotificationService) DeleteExpired(ctx context.Context) (int, error) {
	removed, err := s.notificationRepo.DeleteExpired(ctx, s.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}
	if removed > 0 {
		s.logger.Info("expired notifications deleted", zap.Int("count", removed))
	}
	return removed, nil
}
