package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/reminder"
	"go.uber.org/zap"
)

// SweepRunner runs a named reminder sweep
type SweepRunner interface {
	Run(ctx context.Context, job string) (*reminder.Result, error)
}

type ReminderHandler struct {
	runner SweepRunner
	logger *zap.Logger
}

func NewReminderHandler(runner SweepRunner, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{
		runner: runner,
		logger: logger,
	}
}

// Run godoc
// @Summary Run a reminder sweep now
// @Description Runs one sweep synchronously outside its cron schedule. Admin only.
// @Tags Reminders
// @Produce json
// @Param job path string true "Sweep name" Enums(deadline_reminders, overdue_projects, invoice_reminders, notification_cleanup)
// @Success 200 {object} domain.SweepResultDTO
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError "Unknown sweep"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reminders/{job}/run [post]
func (h *ReminderHandler) Run(w http.ResponseWriter, r *http.Request) {
	job := chi.URLParam(r, "job")

	result, err := h.runner.Run(r.Context(), job)
	if err != nil {
		if errors.Is(err, reminder.ErrUnknownJob) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("failed to run reminder sweep", zap.String("job", job), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to run reminder sweep")
		return
	}

	respondJSON(w, http.StatusOK, domain.SweepResultDTO{
		Job:                  result.Job,
		Scanned:              result.Scanned,
		NotificationsCreated: result.NotificationsCreated,
		Deleted:              result.Deleted,
		ChannelFailures:      result.ChannelFailures,
		Errors:               result.Errors,
	})
}
