package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotificationHandler(t *testing.T) {
	s := newTestServices(t)
	h := handler.NewNotificationHandler(s.notifications, zap.NewNop())

	rr := httptest.NewRecorder()
	h.Create(rr, newRequest(t, http.MethodPost, "/api/v1/notifications", domain.CreateNotificationRequest{
		Type:    domain.NotificationSystemAlert,
		Title:   "Disk",
		Message: "Almost full",
	}, nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[domain.NotificationDTO](t, rr)
	params := map[string]string{"id": created.ID}

	t.Run("list rejects unknown status", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.List(rr, newRequest(t, http.MethodGet, "/api/v1/notifications?status=deleted", nil, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("list rejects unknown type", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.List(rr, newRequest(t, http.MethodGet, "/api/v1/notifications?type=spam", nil, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("list", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.List(rr, newRequest(t, http.MethodGet, "/api/v1/notifications?status=unread", nil, nil))
		require.Equal(t, http.StatusOK, rr.Code)
		resp := decode[domain.NotificationListResponse](t, rr)
		assert.Len(t, resp.Notifications, 1)
		assert.Equal(t, 1, resp.UnreadCount)
	})

	t.Run("mark all read", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.MarkAllAsRead(rr, newRequest(t, http.MethodPut, "/api/v1/notifications/read-all", nil, nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, map[string]int{"updated": 1}, decode[map[string]int](t, rr))
	})

	t.Run("count", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Count(rr, newRequest(t, http.MethodGet, "/api/v1/notifications/count", nil, nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.NotificationCountDTO{Unread: 0, Total: 1}, decode[domain.NotificationCountDTO](t, rr))
	})

	t.Run("archive", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Archive(rr, newRequest(t, http.MethodPut, "/api/v1/notifications/"+created.ID+"/archive", nil, params))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.NotificationStatusArchived, decode[domain.NotificationDTO](t, rr).Status)
	})

	t.Run("delete", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Delete(rr, newRequest(t, http.MethodDelete, "/api/v1/notifications/"+created.ID, nil, params))
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = httptest.NewRecorder()
		h.MarkAsRead(rr, newRequest(t, http.MethodPut, "/api/v1/notifications/"+created.ID+"/read", nil, params))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
