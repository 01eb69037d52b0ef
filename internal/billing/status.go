package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/straye-as/billing-api/internal/domain"
)

// ErrInvalidTransition is returned for any status change outside the allowed set
var ErrInvalidTransition = errors.New("invalid invoice status transition")

var transitions = map[domain.InvoiceStatus][]domain.InvoiceStatus{
	domain.InvoiceStatusDraft: {domain.InvoiceStatusSent, domain.InvoiceStatusCancelled},
	domain.InvoiceStatusSent:  {domain.InvoiceStatusPaid, domain.InvoiceStatusCancelled},
}

// CanTransition reports whether from -> to is allowed. Overdue is never a
// valid target since it is derived, not stored.
func CanTransition(from, to domain.InvoiceStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves inv to status `to` and records the matching dates.
// Totals are left untouched. paidAmount is used when marking paid; nil means
// the full total.
func Transition(inv *domain.Invoice, to domain.InvoiceStatus, paidAmount *decimal.Decimal, now time.Time) error {
	if !CanTransition(inv.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, inv.Status, to)
	}

	switch to {
	case domain.InvoiceStatusSent:
		inv.SentDate = &now
	case domain.InvoiceStatusPaid:
		inv.PaidDate = &now
		if paidAmount != nil {
			inv.PaidAmount = *paidAmount
		} else {
			inv.PaidAmount = inv.Total
		}
	}
	inv.Status = to
	return nil
}

// EffectiveStatus returns overdue for an unpaid, uncancelled invoice whose
// due date has passed, and the stored status otherwise.
func EffectiveStatus(inv *domain.Invoice, now time.Time) domain.InvoiceStatus {
	if inv.Status == domain.InvoiceStatusPaid || inv.Status == domain.InvoiceStatusCancelled {
		return inv.Status
	}
	if inv.DueDate != nil && inv.DueDate.Before(now) {
		return domain.InvoiceStatusOverdue
	}
	return inv.Status
}

// IsEditable reports whether the invoice content may still be changed
func IsEditable(inv *domain.Invoice) bool {
	return inv.Status == domain.InvoiceStatusDraft || inv.Status == domain.InvoiceStatusSent
}

// IsDeletable reports whether the invoice may be deleted
func IsDeletable(inv *domain.Invoice) bool {
	return inv.Status == domain.InvoiceStatusDraft
}
