package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/repository"
	"github.com/straye-as/billing-api/internal/service"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	statsService   *service.StatsService
	logger         *zap.Logger
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, statsService *service.StatsService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		statsService:   statsService,
		logger:         logger,
	}
}

// List godoc
// @Summary List invoices
// @Description Get paginated list of invoices. Filtering by status "overdue" matches sent or draft invoices past their due date.
// @Tags Invoices
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Search by invoice number or notes"
// @Param status query string false "Filter by effective status" Enums(draft, sent, paid, overdue, cancelled)
// @Param clientId query string false "Filter by client"
// @Param projectId query string false "Filter by project"
// @Success 200 {object} domain.InvoiceListResponse
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	q := r.URL.Query()
	filter := repository.InvoiceFilter{
		Search:    q.Get("search"),
		Status:    domain.InvoiceStatus(q.Get("status")),
		ClientID:  q.Get("clientId"),
		ProjectID: q.Get("projectId"),
	}

	result, err := h.invoiceService.List(r.Context(), filter, page, limit)
	if err != nil {
		handleServiceError(w, h.logger, err, "list invoices")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Stats godoc
// @Summary Invoice statistics
// @Description Counts by effective status, revenue from paid invoices and pending amount from sent and overdue invoices
// @Tags Invoices
// @Produce json
// @Success 200 {object} domain.InvoiceStatsDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/stats/overview [get]
func (h *InvoiceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.statsService.InvoiceStats(r.Context()))
}

// GetByID godoc
// @Summary Get invoice by ID
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} domain.InvoiceDTO
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoiceService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err, "get invoice")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// Create godoc
// @Summary Create invoice
// @Description Creates a draft invoice with the next invoice number and computed totals
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body domain.CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} domain.InvoiceDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError "Client or project not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvoiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	invoice, err := h.invoiceService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create invoice")
		return
	}

	w.Header().Set("Location", "/api/v1/invoices/"+invoice.ID)
	respondJSON(w, http.StatusCreated, invoice)
}

// Update godoc
// @Summary Update invoice
// @Description Replaces items and terms and recomputes totals. Paid and cancelled invoices cannot be edited.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param request body domain.UpdateInvoiceRequest true "Invoice data"
// @Success 200 {object} domain.InvoiceDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateInvoiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	invoice, err := h.invoiceService.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update invoice")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// UpdateStatus godoc
// @Summary Change invoice status
// @Description Allowed: draft to sent or cancelled, sent to paid or cancelled. Marking paid records paidDate and paidAmount.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param request body domain.UpdateInvoiceStatusRequest true "New status"
// @Success 200 {object} domain.InvoiceDTO
// @Failure 400 {object} domain.APIError "Validation error or invalid transition"
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/status [put]
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateInvoiceStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	invoice, err := h.invoiceService.UpdateStatus(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update invoice status")
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// Delete godoc
// @Summary Delete invoice
// @Description Only draft invoices can be deleted
// @Tags Invoices
// @Param id path string true "Invoice ID"
// @Success 204
// @Failure 400 {object} domain.APIError "Invoice is not a draft"
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.invoiceService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err, "delete invoice")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
