package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/straye-as/billing-api/internal/store"
)

// Error categories. Every error returned by a service matches exactly one of
// these with errors.Is, which is what handlers map to status codes.
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned for duplicates and disallowed state changes
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when credentials are missing or wrong
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller may not perform the action
	ErrForbidden = errors.New("forbidden")
)

// kindError is a specific error that unwraps to its category
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrClientNotFound       = newError(ErrNotFound, "client not found")
	ErrProjectNotFound      = newError(ErrNotFound, "project not found")
	ErrInvoiceNotFound      = newError(ErrNotFound, "invoice not found")
	ErrNotificationNotFound = newError(ErrNotFound, "notification not found")
	ErrUserNotFound         = newError(ErrNotFound, "user not found")

	ErrDuplicateEmail     = newError(ErrConflict, "a client with this email already exists")
	ErrEmailTaken         = newError(ErrConflict, "an account with this email already exists")
	ErrInvoiceNotDraft    = newError(ErrConflict, "only draft invoices can be deleted")
	ErrInvoiceLocked      = newError(ErrConflict, "paid or cancelled invoices cannot be edited")
	ErrInvalidTransition  = newError(ErrConflict, "invalid invoice status transition")
	ErrProjectClientMatch = newError(ErrInvalidInput, "project does not belong to the invoice client")

	errInvertedRange = errors.New("'to' must not be before 'from'")

	ErrInvalidCredentials   = newError(ErrUnauthorized, "invalid email or password")
	ErrRegistrationDisabled = newError(ErrForbidden, "registration is disabled")
)

// invalidInput tags err as a validation failure while keeping it inspectable
func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// translateStoreError turns store.ErrNotFound into notFound and wraps anything else with msg
func translateStoreError(err, notFound error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// clock is embedded in services that depend on the current time
type clock struct {
	now func() time.Time
}

// SetClock replaces the time source, mainly for tests
func (c *clock) SetClock(now func() time.Time) {
	c.now = now
}

func (c *clock) Now() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now()
}
