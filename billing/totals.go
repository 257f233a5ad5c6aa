package billing

import "math"

// InvoiceType distinguishes GST and non-GST invoices.
type InvoiceType string

const (
	TypeGST    InvoiceType = "gst"
	TypeNonGST InvoiceType = "non-gst"
)

// ValidInvoiceType reports whether t is a known invoice type.
func ValidInvoiceType(t InvoiceType) bool {
	return t == TypeGST || t == TypeNonGST
}

// ExtraCharge is an ad-hoc named charge on an invoice (towing, consumables).
type ExtraCharge struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Totals holds the invoice-level amounts derived from line items and charges.
// Values keep full float precision; rounding happens at presentation time.
type Totals struct {
	Subtotal       float64
	DiscountAmount float64
	CGST           float64
	SGST           float64
	TotalGST       float64
	Total          float64
}

// ComputeTotals derives invoice totals from its line items and charges.
//
// subtotal = sum of line totals + labor + extra charges. The percentage
// discount applies to the whole subtotal. GST is computed per line on
// catalog items only (labor and extra charges are untaxed) and split
// evenly into CGST and SGST. Non-GST invoices carry zero GST regardless
// of the per-line rates.
func ComputeTotals(items []LineItem, laborCharges float64, extraCharges []ExtraCharge, discountPercent float64, invType InvoiceType) (Totals, error) {
	if !ValidInvoiceType(invType) {
		return Totals{}, newValidationError("invoiceType", "unknown invoice type %q", string(invType))
	}
	if err := checkAmount("laborCharges", laborCharges); err != nil {
		return Totals{}, err
	}
	if math.IsNaN(discountPercent) || discountPercent < 0 || discountPercent > 100 {
		return Totals{}, newValidationError("discountPercent", "must be between 0 and 100")
	}

	var t Totals
	for i := range items {
		if err := items[i].validate(); err != nil {
			return Totals{}, err
		}
		t.Subtotal += items[i].TotalAmount
		if invType == TypeGST {
			gst := items[i].TotalAmount * items[i].GSTRate / 100
			t.CGST += gst / 2
			t.SGST += gst / 2
		}
	}

	t.Subtotal += laborCharges
	for _, charge := range extraCharges {
		if err := checkAmount("extraCharges", charge.Amount); err != nil {
			return Totals{}, err
		}
		t.Subtotal += charge.Amount
	}

	t.DiscountAmount = t.Subtotal * discountPercent / 100
	t.TotalGST = t.CGST + t.SGST
	t.Total = t.Subtotal - t.DiscountAmount + t.TotalGST
	return t, nil
}

// Round2 rounds a monetary value to two decimal places for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func checkAmount(field string, v float64) error {
	if math.IsNaN(v) {
		return newValidationError(field, "must be a number")
	}
	if v < 0 {
		return newValidationError(field, "must not be negative")
	}
	return nil
}
