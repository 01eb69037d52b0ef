package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/billing-api/internal/domain"
	"github.com/straye-as/billing-api/internal/http/handler"
	"github.com/straye-as/billing-api/internal/reminder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRunner struct{}

func (fakeRunner) Run(_ context.Context, job string) (*reminder.Result, error) {
	switch job {
	case reminder.JobDeadlineReminders:
		return &reminder.Result{Job: job, Scanned: 4, NotificationsCreated: 2, ChannelFailures: 1}, nil
	case "broken":
		return nil, errors.New("disk full")
	default:
		return nil, fmt.Errorf("%w: %s", reminder.ErrUnknownJob, job)
	}
}

func TestReminderHandler_Run(t *testing.T) {
	h := handler.NewReminderHandler(fakeRunner{}, zap.NewNop())

	run := func(job string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.Run(rr, newRequest(t, http.MethodPost, "/api/v1/reminders/"+job+"/run", nil, map[string]string{"job": job}))
		return rr
	}

	rr := run(reminder.JobDeadlineReminders)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.SweepResultDTO{
		Job:                  reminder.JobDeadlineReminders,
		Scanned:              4,
		NotificationsCreated: 2,
		ChannelFailures:      1,
	}, decode[domain.SweepResultDTO](t, rr))

	assert.Equal(t, http.StatusNotFound, run("nope").Code)
	assert.Equal(t, http.StatusInternalServerError, run("broken").Code)
}
