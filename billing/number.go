package billing

import (
	"fmt"
	"time"
)

// Invoice number prefixes by type.
const (
	prefixGST    = "GST"
	prefixNonGST = "NON-GST"
)

// FormatInvoiceNumber builds a human-readable invoice number of the form
// {PREFIX}-{YYYYMMDD}-{NNN}. The sequence is a per-day counter supplied by
// the caller (bumped inside the creation transaction), so numbers are
// unique without a collision lottery.
func FormatInvoiceNumber(invType InvoiceType, day time.Time, seq int64) (string, error) {
	if !ValidInvoiceType(invType) {
		return "", newValidationError("invoiceType", "unknown invoice type %q", string(invType))
	}
	if seq < 1 {
		return "", newValidationError("sequence", "must be positive, got %d", seq)
	}

	prefix := prefixGST
	if invType == TypeNonGST {
		prefix = prefixNonGST
	}
	return fmt.Sprintf("%s-%s-%03d", prefix, day.Format("20060102"), seq), nil
}
