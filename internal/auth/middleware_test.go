package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/billing-api/internal/auth"
	"github.com/straye-as/billing-api/internal/config"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "test-api-key-12345"

func createTestMiddleware(t *testing.T) (*auth.Middleware, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret:     "test-secret-key-for-testing-only",
		TokenTTLHours: 1,
		Issuer:        "billing-api",
	})
	return auth.NewMiddleware(tokens, testAPIKey, zap.NewNop()), tokens
}

// capture returns a handler recording the user context it was called with
func capture(called *bool, userCtx **auth.UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		*userCtx, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_Authenticate_WithAPIKey(t *testing.T) {
	middleware, _ := createTestMiddleware(t)

	var called bool
	var userCtx *auth.UserContext
	handler := middleware.Authenticate(capture(&called, &userCtx))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("x-api-key", testAPIKey)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
	require.NotNil(t, userCtx)
	assert.True(t, userCtx.IsSystem())
	assert.True(t, userCtx.IsAdmin())
}

func TestMiddleware_Authenticate_WithBearerToken(t *testing.T) {
	middleware, tokens := createTestMiddleware(t)

	user := &domain.User{Name: "Bob", Email: "bob@x.test", Role: domain.UserRoleUser}
	user.ID = "u2"
	token, _, err := tokens.Issue(user)
	require.NoError(t, err)

	var called bool
	var userCtx *auth.UserContext
	handler := middleware.Authenticate(capture(&called, &userCtx))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, userCtx)
	assert.Equal(t, "u2", userCtx.UserID)
	assert.False(t, userCtx.IsAdmin())
}

func TestMiddleware_Authenticate_Rejects(t *testing.T) {
	middleware, _ := createTestMiddleware(t)

	tests := []struct {
		name   string
		header string
		value  string
	}{
		{"missing header", "", ""},
		{"invalid api key", "x-api-key", "wrong"},
		{"basic scheme", "Authorization", "Basic dXNlcjpwYXNz"},
		{"bad token", "Authorization", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			var userCtx *auth.UserContext
			handler := middleware.Authenticate(capture(&called, &userCtx))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, called)

			var body domain.APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, domain.ErrorTypeUnauthorized, body.Type)
		})
	}
}

func TestMiddleware_RequireAdmin(t *testing.T) {
	middleware, _ := createTestMiddleware(t)

	t.Run("admin", func(t *testing.T) {
		var called bool
		var userCtx *auth.UserContext
		handler := middleware.RequireAdmin(capture(&called, &userCtx))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/reminders/overdue_projects/run", nil)
		req = req.WithContext(auth.WithUserContext(req.Context(), auth.SystemUser()))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})

	t.Run("regular user", func(t *testing.T) {
		var called bool
		var userCtx *auth.UserContext
		handler := middleware.RequireAdmin(capture(&called, &userCtx))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/reminders/overdue_projects/run", nil)
		req = req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{UserID: "u2", Role: domain.UserRoleUser}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, called)
	})
}
