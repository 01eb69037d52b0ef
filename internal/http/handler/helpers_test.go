package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/service"
	"github.com/straye-as/billing-api/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testServices struct {
	env           *testutil.Env
	clients       *service.ClientService
	projects      *service.ProjectService
	invoices      *service.InvoiceService
	notifications *service.NotificationService
	stats         *service.StatsService
	calendar      *service.CalendarService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	env := testutil.NewEnv(t)
	s := &testServices{
		env:           env,
		clients:       service.NewClientService(env.Clients, env.Projects, env.Invoices, false, env.Logger),
		projects:      service.NewProjectService(env.Projects, env.Clients, env.Logger),
		invoices:      service.NewInvoiceService(env.Invoices, env.Clients, env.Projects, env.Logger),
		notifications: service.NewNotificationService(env.Notifications, 24*time.Hour, env.Logger),
		stats:         service.NewStatsService(env.Clients, env.Projects, env.Invoices, env.Notifications, env.Logger),
		calendar:      service.NewCalendarService(env.Projects, env.Invoices),
	}
	for _, c := range []interface{ SetClock(func() time.Time) }{
		s.clients, s.projects, s.invoices, s.notifications, s.stats, s.calendar,
	} {
		c.SetClock(env.Clock.Now)
	}
	return s
}

// newRequest builds a request with an optional JSON body and chi URL params
func newRequest(t *testing.T, method, target string, body interface{}, params map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (s *testServices) seedClient(t *testing.T, name, email string) *domain.ClientDTO {
	t.Helper()
	s.env.Clock.Advance(time.Second)
	c, err := s.clients.Create(context.Background(), &domain.CreateClientRequest{Name: name, Email: email})
	require.NoError(t, err)
	return c
}
