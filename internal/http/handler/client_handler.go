package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/repository"
	"github.com/straye-as/billing-api/internal/service"
	"go.uber.org/zap"
)

type ClientHandler struct {
	clientService *service.ClientService
	logger        *zap.Logger
}

func NewClientHandler(clientService *service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger,
	}
}

// List godoc
// @Summary List clients
// @Description Get paginated list of clients, newest first
// @Tags Clients
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Search by name, email or company"
// @Param status query string false "Filter by status" Enums(active, inactive, prospect)
// @Success 200 {object} domain.ClientListResponse
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients [get]
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	filter := repository.ClientFilter{
		Search: r.URL.Query().Get("search"),
		Status: domain.ClientStatus(r.URL.Query().Get("status")),
	}

	result, err := h.clientService.List(r.Context(), filter, page, limit)
	if err != nil {
		handleServiceError(w, h.logger, err, "list clients")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get client by ID
// @Description Get a client together with its projects and invoices
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} domain.ClientDetailDTO
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	client, err := h.clientService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err, "get client")
		return
	}

	respondJSON(w, http.StatusOK, client)
}

// Create godoc
// @Summary Create client
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body domain.CreateClientRequest true "Client data"
// @Success 201 {object} domain.ClientDTO
// @Failure 400 {object} domain.APIError "Validation error or duplicate email"
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients [post]
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClientRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	client, err := h.clientService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create client")
		return
	}

	w.Header().Set("Location", "/api/v1/clients/"+client.ID)
	respondJSON(w, http.StatusCreated, client)
}

// Update godoc
// @Summary Update client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param request body domain.UpdateClientRequest true "Client data"
// @Success 200 {object} domain.ClientDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateClientRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	client, err := h.clientService.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update client")
		return
	}

	respondJSON(w, http.StatusOK, client)
}

// Delete godoc
// @Summary Delete client
// @Description Deletes the client only. Its projects and invoices are kept.
// @Tags Clients
// @Param id path string true "Client ID"
// @Success 204
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.clientService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err, "delete client")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RefreshStats godoc
// @Summary Recompute client counters
// @Description Recomputes totalProjects and totalRevenue from the client's projects
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} domain.ClientDTO
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id}/refresh-stats [post]
func (h *ClientHandler) RefreshStats(w http.ResponseWriter, r *http.Request) {
	client, err := h.clientService.RefreshStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err, "refresh client stats")
		return
	}

	respondJSON(w, http.StatusOK, client)
}
