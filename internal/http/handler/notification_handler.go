package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/repository"
	"github.com/straye-as/billing-api/internal/service"
	"go.uber.org/zap"
)

// validNotificationTypes contains all valid notification type values
var validNotificationTypes = map[domain.NotificationType]bool{
	domain.NotificationClientAdded:      true,
	domain.NotificationProjectCreated:   true,
	domain.NotificationProjectCompleted: true,
	domain.NotificationDeadlineReminder: true,
	domain.NotificationProjectOverdue:   true,
	domain.NotificationInvoiceGenerated: true,
	domain.NotificationInvoiceOverdue:   true,
	domain.NotificationPaymentReceived:  true,
	domain.NotificationSystemAlert:      true,
}

var validNotificationStatuses = map[domain.NotificationStatus]bool{
	domain.NotificationStatusUnread:   true,
	domain.NotificationStatusRead:     true,
	domain.NotificationStatusArchived: true,
}

// NotificationHandler handles HTTP requests for notifications
type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler instance
func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// List godoc
// @Summary List notifications
// @Description Get paginated list of notifications, newest first, with the unread count
// @Tags Notifications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param status query string false "Filter by status" Enums(unread, read, archived)
// @Param type query string false "Filter by notification type"
// @Success 200 {object} domain.NotificationListResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	filter := repository.NotificationFilter{
		Status: domain.NotificationStatus(r.URL.Query().Get("status")),
		Type:   domain.NotificationType(r.URL.Query().Get("type")),
	}

	if filter.Type != "" && !validNotificationTypes[filter.Type] {
		respondWithError(w, http.StatusBadRequest, "invalid notification type: "+string(filter.Type))
		return
	}
	if filter.Status != "" && !validNotificationStatuses[filter.Status] {
		respondWithError(w, http.StatusBadRequest, "invalid notification status: "+string(filter.Status))
		return
	}

	result, err := h.notificationService.List(r.Context(), filter, page, limit)
	if err != nil {
		handleServiceError(w, h.logger, err, "list notifications")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Count godoc
// @Summary Notification counts
// @Description Total and unread notification counts
// @Tags Notifications
// @Produce json
// @Success 200 {object} domain.NotificationCountDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications/count [get]
func (h *NotificationHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.notificationService.Count(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "count notifications")
		return
	}

	respondJSON(w, http.StatusOK, count)
}

// GetByID godoc
// @Summary Get notification by ID
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} domain.NotificationDTO
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications/{id} [get]
func (h *NotificationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	notification, err := h.notificationService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err, "get notification")
		return
	}

	respondJSON(w, http.StatusOK, notification)
}

// Create godoc
// @Summary Create notification
// @Description Manually create an in-app notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param request body domain.CreateNotificationRequest true "Notification data"
// @Success 201 {object} domain.NotificationDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications [post]
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNotificationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	notification, err := h.notificationService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create notification")
		return
	}

	respondJSON(w, http.StatusCreated, notification)
}

// MarkAsRead godoc
// @Summary Mark notification as read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} domain.NotificationDTO
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	notification, err := h.notificationService.MarkAsRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err, "mark notification as read")
		return
	}

	respondJSON(w, http.StatusOK, notification)
}

// MarkAllAsRead godoc
// @Summary Mark all notifications as read
// @Tags Notifications
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications/read-all [put]
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	updated, err := h.notificationService.MarkAllAsRead(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "mark all notifications as read")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// Archive godoc
// @Summary Archive notification
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} domain.NotificationDTO
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications/{id}/archive [put]
func (h *NotificationHandler) Archive(w http.ResponseWriter, r *http.Request) {
	notification, err := h.notificationService.Archive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err, "archive notification")
		return
	}

	respondJSON(w, http.StatusOK, notification)
}

// Delete godoc
// @Summary Delete notification
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err, "delete notification")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
