package handler

import (
	"net/http"
	"time"

	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	statsService    *service.StatsService
	calendarService *service.CalendarService
	logger          *zap.Logger
}

func NewDashboardHandler(statsService *service.StatsService, calendarService *service.CalendarService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		statsService:    statsService,
		calendarService: calendarService,
		logger:          logger,
	}
}

// @Summary Get dashboard statistics
// @Description Client, project and invoice statistics plus the unread notification count.
// @Description Everything is recomputed from the stored records on each call.
// @Description
// @Description - `projects.overdue`: endDate in the past and not completed or cancelled
// @Description - `invoices.totalRevenue`: sum of paid invoice totals
// @Description - `invoices.pendingAmount`: sum of sent and overdue invoice totals
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardStatsDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.Dashboard(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "get dashboard stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// @Summary Calendar events
// @Description Project deadlines, milestone due dates and invoice due dates between from and to, ordered by date.
// @Description Defaults to the next 31 days.
// @Tags Dashboard
// @Produce json
// @Param from query string false "Start (YYYY-MM-DD or RFC 3339)"
// @Param to query string false "End (YYYY-MM-DD or RFC 3339)"
// @Success 200 {object} domain.CalendarResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /calendar [get]
func (h *DashboardHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	from, ok := parseDateParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := parseDateParam(w, r, "to")
	if !ok {
		return
	}

	events, err := h.calendarService.Events(r.Context(), from, to)
	if err != nil {
		handleServiceError(w, h.logger, err, "get calendar")
		return
	}

	respondJSON(w, http.StatusOK, events)
}

func parseDateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := domain.ParseTimestamp(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, name+": "+err.Error())
		return time.Time{}, false
	}
	return t, true
}
