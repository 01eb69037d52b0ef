package billing

import (
	"fmt"
	"strconv"
	"strings"
)

// InvoiceNumberPrefix starts every invoice number
const InvoiceNumberPrefix = "INV-"

// FormatInvoiceNumber renders n as INV-0001. Numbers above 9999 keep all digits.
func FormatInvoiceNumber(n int) string {
	return fmt.Sprintf("%s%04d", InvoiceNumberPrefix, n)
}

// ParseInvoiceNumber extracts the sequence from an INV-NNNN number
func ParseInvoiceNumber(number string) (int, bool) {
	if !strings.HasPrefix(number, InvoiceNumberPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(number, InvoiceNumberPrefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextInvoiceNumber picks the number for a new invoice from a snapshot of
// the existing numbers: one past the larger of the collection size and the
// highest sequence in use. Deleting a draft therefore never causes a later
// invoice to reuse a surviving number. Two creations working from the same
// snapshot can still pick the same number.
func NextInvoiceNumber(existing []string) string {
	highest := len(existing)
	for _, number := range existing {
		if n, ok := ParseInvoiceNumber(number); ok && n > highest {
			highest = n
		}
	}
	return FormatInvoiceNumber(highest + 1)
}
