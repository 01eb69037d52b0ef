package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/service"
	"go.uber.org/zap"
)

var validate = domain.NewValidator()

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// decodeAndValidate reads a JSON body into req and validates it. On failure
// the response has already been written and false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return false
	}
	return true
}

// respondValidationError sends a standardized validation error response with specific field messages
func respondValidationError(w http.ResponseWriter, err error) {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			errs[fieldPath(fe.Namespace())] = formatValidationError(fe)
		}
	}

	respondJSON(w, http.StatusBadRequest, domain.APIError{
		Type:    domain.ErrorTypeValidation,
		Message: "One or more fields failed validation",
		Status:  http.StatusBadRequest,
		Errors:  errs,
	})
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", toJSONFieldName(fe.Field()))
	case "email":
		return "Must be a valid email address"
	case "max":
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", fe.Param())
	case "lt":
		return fmt.Sprintf("Must be less than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

// fieldPath turns a validator namespace like "CreateInvoiceRequest.Items[0].Rate" into "items[0].rate"
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = toJSONFieldName(p)
	}
	return strings.Join(parts, ".")
}

// toJSONFieldName converts a Go struct field name to its JSON equivalent (camelCase)
func toJSONFieldName(field string) string {
	if len(field) == 0 {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// respondWithError sends a standardized JSON error response
func respondWithError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, domain.APIError{
		Type:    getErrorType(status),
		Message: message,
		Status:  status,
	})
}

// getErrorType returns the appropriate error type for an HTTP status code
func getErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrorTypeBadRequest
	case http.StatusUnauthorized:
		return domain.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return domain.ErrorTypeForbidden
	case http.StatusNotFound:
		return domain.ErrorTypeNotFound
	case http.StatusConflict:
		return domain.ErrorTypeConflict
	case http.StatusTooManyRequests:
		return domain.ErrorTypeRateLimited
	default:
		return domain.ErrorTypeInternal
	}
}

// handleServiceError maps a service error category to a response.
// Conflicts are reported as 400 with type "conflict".
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	var status int
	var errType string
	switch {
	case errors.Is(err, service.ErrNotFound):
		status, errType = http.StatusNotFound, domain.ErrorTypeNotFound
	case errors.Is(err, service.ErrInvalidInput):
		status, errType = http.StatusBadRequest, domain.ErrorTypeValidation
	case errors.Is(err, service.ErrConflict):
		status, errType = http.StatusBadRequest, domain.ErrorTypeConflict
	case errors.Is(err, service.ErrUnauthorized):
		status, errType = http.StatusUnauthorized, domain.ErrorTypeUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status, errType = http.StatusForbidden, domain.ErrorTypeForbidden
	default:
		logger.Error("failed to "+action, zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.APIError{
			Type:    domain.ErrorTypeInternal,
			Message: "Failed to " + action,
			Status:  http.StatusInternalServerError,
		})
		return
	}

	respondJSON(w, status, domain.APIError{
		Type:    errType,
		Message: err.Error(),
		Status:  status,
	})
}

// parsePagination reads page and limit query parameters; bad values fall back to defaults
func parsePagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}
