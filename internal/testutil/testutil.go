// Package testutil builds a throwaway local store with repositories and a
// controllable clock for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/straye-as/billing-api/internal/repository"
	"github.com/straye-as/billing-api/internal/storage"
	"github.com/straye-as/billing-api/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Epoch is the default fixed time for tests: Monday 2024-03-04 09:00 UTC
var Epoch = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

// Clock is a settable clock shared by the store and the services under test
type Clock struct {
	t time.Time
}

// Now returns the current fake time
func (c *Clock) Now() time.Time { return c.t }

// Set moves the clock to t
func (c *Clock) Set(t time.Time) { c.t = t }

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// Env bundles a temp-dir backed store and all repositories
type Env struct {
	Dir           string
	Backend       *storage.LocalStorage
	Store         *store.Store
	Clock         *Clock
	Logger        *zap.Logger
	Clients       *repository.ClientRepository
	Projects      *repository.ProjectRepository
	Invoices      *repository.InvoiceRepository
	Notifications *repository.NotificationRepository
	Users         *repository.UserRepository
}

// NewEnv creates an Env rooted in t.TempDir with the clock at Epoch
func NewEnv(t *testing.T) *Env {
	t.Helper()

	dir := t.TempDir()
	backend, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	clock := &Clock{t: Epoch}
	logger := zap.NewNop()
	s := store.New(backend, logger).WithClock(clock.Now)

	return &Env{
		Dir:           dir,
		Backend:       backend,
		Store:         s,
		Clock:         clock,
		Logger:        logger,
		Clients:       repository.NewClientRepository(s),
		Projects:      repository.NewProjectRepository(s),
		Invoices:      repository.NewInvoiceRepository(s),
		Notifications: repository.NewNotificationRepository(s),
		Users:         repository.NewUserRepository(s),
	}
}

// Date returns midnight UTC on the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Ptr returns a pointer to t
func Ptr(t time.Time) *time.Time { return &t }
