// Package billing holds the invoice arithmetic and the invoice status machine.
package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/straye-as/billing-api/internal/domain"
)

var (
	// ErrNoItems is returned when an invoice would have no line items
	ErrNoItems = errors.New("invoice must have at least one item")
	// ErrInvalidItem is returned for a line item with a bad quantity or rate
	ErrInvalidItem = errors.New("invalid invoice item")
	// ErrInvalidPercent is returned for a discount or tax outside 0-100
	ErrInvalidPercent = errors.New("percentage must be between 0 and 100")
)

var hundred = decimal.NewFromInt(100)

// Totals is the computed money breakdown of an invoice
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// LineAmount returns quantity x rate
func LineAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(rate)
}

// ComputeTotals derives the invoice totals. Tax is charged on the amount
// after discount. Nothing is rounded here.
func ComputeTotals(items []domain.InvoiceItem, discountPercent, taxPercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(LineAmount(item.Quantity, item.Rate))
	}

	discountAmount := subtotal.Mul(discountPercent).Div(hundred)
	taxable := subtotal.Sub(discountAmount)
	taxAmount := taxable.Mul(taxPercent).Div(hundred)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		Total:          taxable.Add(taxAmount),
	}
}

// ValidateItems enforces the line item rules: at least one item, each with
// a description, quantity > 0 and rate >= 0.
func ValidateItems(items []domain.InvoiceItem) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	for i, item := range items {
		if item.Description == "" {
			return fmt.Errorf("%w: item %d has no description", ErrInvalidItem, i+1)
		}
		if !item.Quantity.IsPositive() {
			return fmt.Errorf("%w: item %d quantity must be greater than 0", ErrInvalidItem, i+1)
		}
		if item.Rate.IsNegative() {
			return fmt.Errorf("%w: item %d rate must not be negative", ErrInvalidItem, i+1)
		}
	}
	return nil
}

// ValidatePercent checks that p is within 0-100
func ValidatePercent(name string, p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return fmt.Errorf("%w: %s is %s", ErrInvalidPercent, name, p.String())
	}
	return nil
}

// Apply validates the inputs, fills in each item's amount and writes the
// totals onto inv.
func Apply(inv *domain.Invoice, items []domain.InvoiceItem, discountPercent, taxPercent decimal.Decimal) error {
	if err := ValidateItems(items); err != nil {
		return err
	}
	if err := ValidatePercent("discount", discountPercent); err != nil {
		return err
	}
	if err := ValidatePercent("tax", taxPercent); err != nil {
		return err
	}

	lines := make([]domain.InvoiceItem, len(items))
	for i, item := range items {
		item.Amount = LineAmount(item.Quantity, item.Rate)
		lines[i] = item
	}

	totals := ComputeTotals(lines, discountPercent, taxPercent)
	inv.Items = lines
	inv.Discount = discountPercent
	inv.Tax = taxPercent
	inv.Subtotal = totals.Subtotal
	inv.DiscountAmount = totals.DiscountAmount
	inv.TaxAmount = totals.TaxAmount
	inv.Total = totals.Total
	return nil
}
