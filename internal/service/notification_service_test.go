package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/repository"
	"github.com/straye-as/billing-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createNotification(t *testing.T, s *services, title string, typ domain.NotificationType) *domain.NotificationDTO {
	t.Helper()
	s.env.Clock.Advance(time.Second)
	n, err := s.notifications.Create(context.Background(), &domain.CreateNotificationRequest{
		Type:    typ,
		Title:   title,
		Message: title + " message",
	})
	require.NoError(t, err)
	return n
}

func TestNotificationService_Create(t *testing.T) {
	s := newServices(t, false)

	n := createNotification(t, s, "Hello", domain.NotificationSystemAlert)

	assert.Equal(t, domain.NotificationStatusUnread, n.Status)
	assert.Equal(t, domain.PriorityMedium, n.Priority)
	assert.Empty(t, n.ReadAt)

	expires, err := time.Parse(time.RFC3339, n.ExpiresAt)
	require.NoError(t, err)
	assert.Equal(t, s.env.Clock.Now().Add(24*time.Hour).Truncate(time.Second), expires.UTC())
}

func TestNotificationService_ReadAndArchive(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, false)
	a := createNotification(t, s, "A", domain.NotificationSystemAlert)
	b := createNotification(t, s, "B", domain.NotificationDeadlineReminder)
	c := createNotification(t, s, "C", domain.NotificationDeadlineReminder)

	t.Run("mark one read", func(t *testing.T) {
		read, err := s.notifications.MarkAsRead(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.NotificationStatusRead, read.Status)
		assert.NotEmpty(t, read.ReadAt)
	})

	t.Run("archive", func(t *testing.T) {
		archived, err := s.notifications.Archive(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.NotificationStatusArchived, archived.Status)

		// reading an archived notification keeps it archived
		again, err := s.notifications.MarkAsRead(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.NotificationStatusArchived, again.Status)
	})

	t.Run("count", func(t *testing.T) {
		count, err := s.notifications.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count.Unread)
		assert.Equal(t, 3, count.Total)
	})

	t.Run("mark all read", func(t *testing.T) {
		n, err := s.notifications.MarkAllAsRead(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		got, err := s.notifications.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.NotificationStatusRead, got.Status)

		n, err = s.notifications.MarkAllAsRead(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.notifications.MarkAsRead(ctx, "missing")
		assert.ErrorIs(t, err, service.ErrNotificationNotFound)
		_, err = s.notifications.Archive(ctx, "missing")
		assert.ErrorIs(t, err, service.ErrNotFound)
		assert.ErrorIs(t, s.notifications.Delete(ctx, "missing"), service.ErrNotFound)
	})
}

func TestNotificationService_List(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, false)
	createNotification(t, s, "A", domain.NotificationSystemAlert)
	createNotification(t, s, "B", domain.NotificationDeadlineReminder)
	createNotification(t, s, "C", domain.NotificationDeadlineReminder)

	resp, err := s.notifications.List(ctx, repository.NotificationFilter{Type: domain.NotificationDeadlineReminder}, 1, 10)
	require.NoError(t, err)
	require.Len(t, resp.Notifications, 2)
	assert.Equal(t, "C", resp.Notifications[0].Title)
	assert.Equal(t, 2, resp.Pagination.TotalNotifications)
	assert.Equal(t, 3, resp.UnreadCount)
}

func TestNotificationService_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, false)
	createNotification(t, s, "old", domain.NotificationSystemAlert)
	s.env.Clock.Advance(12 * time.Hour)
	fresh := createNotification(t, s, "fresh", domain.NotificationSystemAlert)

	s.env.Clock.Advance(13 * time.Hour)
	removed, err := s.notifications.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	remaining := s.env.Notifications.All(ctx)
	require.Len(t, remaining, 1)
	assert.Equal(t, fresh.ID, remaining[0].ID)
}

func TestNotificationService_RecordDelivery(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, false)
	n := createNotification(t, s, "A", domain.NotificationSystemAlert)

	at := s.env.Clock.Now()
	err := s.notifications.RecordDelivery(ctx, n.ID, domain.NotificationChannels{
		Email: domain.ChannelDelivery{Attempted: true, Succeeded: true, Timestamp: &at},
	})
	require.NoError(t, err)

	got, err := s.notifications.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.Channels["email"].Succeeded)
	assert.False(t, got.Channels["whatsapp"].Attempted)

	assert.ErrorIs(t, s.notifications.RecordDelivery(ctx, "missing", domain.NotificationChannels{}), service.ErrNotFound)
}
