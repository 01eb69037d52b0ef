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

func TestClientHandler_Create(t *testing.T) {
	s := newTestServices(t)
	h := handler.NewClientHandler(s.clients, zap.NewNop())

	t.Run("created", func(t *testing.T) {
		req := newRequest(t, http.MethodPost, "/api/v1/clients", domain.CreateClientRequest{
			Name:  "Acme",
			Email: "ops@acme.test",
		}, nil)
		rr := httptest.NewRecorder()

		h.Create(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		client := decode[domain.ClientDTO](t, rr)
		assert.Equal(t, "Acme", client.Name)
		assert.Equal(t, domain.ClientStatusActive, client.Status)
		assert.Equal(t, "/api/v1/clients/"+client.ID, rr.Header().Get("Location"))
	})

	t.Run("validation errors per field", func(t *testing.T) {
		req := newRequest(t, http.MethodPost, "/api/v1/clients", map[string]string{
			"email":  "not-an-email",
			"status": "gone",
		}, nil)
		rr := httptest.NewRecorder()

		h.Create(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decode[domain.APIError](t, rr)
		assert.Equal(t, domain.ErrorTypeValidation, body.Type)
		assert.Contains(t, body.Errors, "name")
		assert.Contains(t, body.Errors, "email")
		assert.Contains(t, body.Errors, "status")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := newRequest(t, http.MethodPost, "/api/v1/clients", "{oops", nil)
		rr := httptest.NewRecorder()

		h.Create(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, domain.ErrorTypeBadRequest, decode[domain.APIError](t, rr).Type)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		req := newRequest(t, http.MethodPost, "/api/v1/clients", domain.CreateClientRequest{
			Name:  "Acme again",
			Email: "ops@acme.test",
		}, nil)
		rr := httptest.NewRecorder()

		h.Create(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decode[domain.APIError](t, rr)
		assert.Equal(t, domain.ErrorTypeConflict, body.Type)
		assert.Equal(t, http.StatusBadRequest, body.Status)
	})
}

func TestClientHandler_GetByID(t *testing.T) {
	s := newTestServices(t)
	h := handler.NewClientHandler(s.clients, zap.NewNop())
	acme := s.seedClient(t, "Acme", "ops@acme.test")

	t.Run("found", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.GetByID(rr, newRequest(t, http.MethodGet, "/api/v1/clients/"+acme.ID, nil, map[string]string{"id": acme.ID}))

		require.Equal(t, http.StatusOK, rr.Code)
		detail := decode[domain.ClientDetailDTO](t, rr)
		assert.Equal(t, acme.ID, detail.ID)
		assert.NotNil(t, detail.Projects)
	})

	t.Run("not found", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.GetByID(rr, newRequest(t, http.MethodGet, "/api/v1/clients/missing", nil, map[string]string{"id": "missing"}))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, domain.ErrorTypeNotFound, decode[domain.APIError](t, rr).Type)
	})
}

func TestClientHandler_List(t *testing.T) {
	s := newTestServices(t)
	h := handler.NewClientHandler(s.clients, zap.NewNop())
	s.seedClient(t, "Acme", "ops@acme.test")
	s.seedClient(t, "Globex", "hi@globex.test")

	rr := httptest.NewRecorder()
	h.List(rr, newRequest(t, http.MethodGet, "/api/v1/clients?search=glob&page=1&limit=5", nil, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[domain.ClientListResponse](t, rr)
	require.Len(t, resp.Clients, 1)
	assert.Equal(t, "Globex", resp.Clients[0].Name)
	assert.Equal(t, 1, resp.Pagination.TotalClients)
	assert.Equal(t, 1, resp.Pagination.CurrentPage)
}

func TestClientHandler_UpdateDelete(t *testing.T) {
	s := newTestServices(t)
	h := handler.NewClientHandler(s.clients, zap.NewNop())
	acme := s.seedClient(t, "Acme", "ops@acme.test")
	params := map[string]string{"id": acme.ID}

	rr := httptest.NewRecorder()
	h.Update(rr, newRequest(t, http.MethodPut, "/api/v1/clients/"+acme.ID, domain.UpdateClientRequest{
		Name:  "Acme Corp",
		Email: "ops@acme.test",
	}, params))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Acme Corp", decode[domain.ClientDTO](t, rr).Name)

	rr = httptest.NewRecorder()
	h.RefreshStats(rr, newRequest(t, http.MethodPost, "/api/v1/clients/"+acme.ID+"/refresh-stats", nil, params))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.Delete(rr, newRequest(t, http.MethodDelete, "/api/v1/clients/"+acme.ID, nil, params))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = httptest.NewRecorder()
	h.Delete(rr, newRequest(t, http.MethodDelete, "/api/v1/clients/"+acme.ID, nil, params))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
