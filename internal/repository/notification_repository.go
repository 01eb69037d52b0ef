package repository

import (
	"context"
	"time"

	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/store"
)

// NotificationFilter narrows notification listings
type NotificationFilter struct {
	Status domain.NotificationStatus
	Type   domain.NotificationType
}

type NotificationRepository struct {
	notifications *store.Collection[*domain.Notification]
}

func NewNotificationRepository(s *store.Store) *NotificationRepository {
	return &NotificationRepository{notifications: store.NewCollection[*domain.Notification](s, CollectionNotifications)}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	_, err := r.notifications.Create(ctx, notification)
	return err
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	return r.notifications.FindByID(ctx, id)
}

func (r *NotificationRepository) Update(ctx context.Context, id string, mutate func(*domain.Notification) error) (*domain.Notification, error) {
	return r.notifications.Update(ctx, id, mutate)
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	return r.notifications.Delete(ctx, id)
}

func (r *NotificationRepository) All(ctx context.Context) []*domain.Notification {
	return r.notifications.GetAll(ctx)
}

// List returns one page of matching notifications, newest first, and the total match count
func (r *NotificationRepository) List(ctx context.Context, filter NotificationFilter, page, pageSize int) ([]*domain.Notification, int) {
	matches := r.notifications.Find(ctx, func(n *domain.Notification) bool {
		if filter.Status != "" && n.Status != filter.Status {
			return false
		}
		if filter.Type != "" && n.Type != filter.Type {
			return false
		}
		return true
	})

	newestFirst(matches)
	return paginate(matches, page, pageSize), len(matches)
}

func (r *NotificationRepository) CountUnread(ctx context.Context) int {
	return len(r.notifications.Find(ctx, func(n *domain.Notification) bool {
		return n.Status == domain.NotificationStatusUnread
	}))
}

func (r *NotificationRepository) Count(ctx context.Context) int {
	return r.notifications.Count(ctx)
}

// MarkAllAsRead flips every unread notification to read in one write
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, now time.Time) (int, error) {
	all := r.notifications.GetAll(ctx)
	marked := 0
	for _, n := range all {
		if n.Status != domain.NotificationStatusUnread {
			continue
		}
		n.Status = domain.NotificationStatusRead
		readAt := now
		n.ReadAt = &readAt
		n.Touch(now)
		marked++
	}
	if marked == 0 {
		return 0, nil
	}
	if err := r.notifications.WriteAll(ctx, all); err != nil {
		return 0, err
	}
	return marked, nil
}

// DeleteExpired removes notifications whose expiry is before now
func (r *NotificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return r.notifications.DeleteWhere(ctx, func(n *domain.Notification) bool {
		return n.ExpiresAt.Before(now)
	})
}
