package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/repository"
	"github.com/straye-as/billing-api/internal/service"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	statsService   *service.StatsService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, statsService *service.StatsService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		statsService:   statsService,
		logger:         logger,
	}
}

// List godoc
// @Summary List projects
// @Description Get paginated list of projects, newest first
// @Tags Projects
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Search by title, description or tag"
// @Param status query string false "Filter by status" Enums(pending, in-progress, completed, cancelled, on-hold)
// @Param priority query string false "Filter by priority" Enums(low, medium, high, urgent)
// @Param clientId query string false "Filter by client"
// @Success 200 {object} domain.ProjectListResponse
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	q := r.URL.Query()
	filter := repository.ProjectFilter{
		Search:   q.Get("search"),
		Status:   domain.ProjectStatus(q.Get("status")),
		Priority: domain.Priority(q.Get("priority")),
		ClientID: q.Get("clientId"),
	}

	result, err := h.projectService.List(r.Context(), filter, page, limit)
	if err != nil {
		handleServiceError(w, h.logger, err, "list projects")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Stats godoc
// @Summary Project statistics
// @Description Counts by status plus overdue count and total value, computed on every call
// @Tags Projects
// @Produce json
// @Success 200 {object} domain.ProjectStatsDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/stats/overview [get]
func (h *ProjectHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.statsService.ProjectStats(r.Context()))
}

// GetByID godoc
// @Summary Get project by ID
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.ProjectDTO
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err, "get project")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// Create godoc
// @Summary Create project
// @Description Creates a project for an existing client and updates the client's counters
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.CreateProjectRequest true "Project data"
// @Success 201 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError "Client not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create project")
		return
	}

	w.Header().Set("Location", "/api/v1/projects/"+project.ID)
	respondJSON(w, http.StatusCreated, project)
}

// Update godoc
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.UpdateProjectRequest true "Project data"
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update project")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// Delete godoc
// @Summary Delete project
// @Tags Projects
// @Param id path string true "Project ID"
// @Success 204
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.projectService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err, "delete project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
