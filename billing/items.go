package billing

import "github.com/google/uuid"

// ItemKind tells whether a line item came from the service or part catalog.
type ItemKind string

const (
	KindService ItemKind = "service"
	KindPart    ItemKind = "part"
)

// LineItem is one billable row on an invoice. Name, tax code, unit price
// and GST rate are snapshots taken when the catalog entry was added; later
// catalog edits never touch existing line items. CatalogID is kept only as
// a back-reference for reporting.
type LineItem struct {
	ID             string
	Kind           ItemKind
	CatalogID      string
	Name           string
	SACHSNCode     string
	Quantity       int
	UnitPrice      float64
	DiscountAmount float64
	GSTRate        float64
	TotalAmount    float64
}

func (li *LineItem) validate() error {
	if li.Quantity < 1 {
		return newValidationError("quantity", "must be at least 1")
	}
	if err := checkAmount("unitPrice", li.UnitPrice); err != nil {
		return err
	}
	if err := checkAmount("discountAmount", li.DiscountAmount); err != nil {
		return err
	}
	if li.DiscountAmount > li.UnitPrice {
		return newValidationError("discountAmount", "must not exceed unit price")
	}
	if err := checkAmount("gstRate", li.GSTRate); err != nil {
		return err
	}
	return nil
}

func lineTotal(unitPrice, discount float64, quantity int) float64 {
	return (unitPrice - discount) * float64(quantity)
}

// CatalogSnapshot carries the fields copied off a catalog entry at the
// moment it is added to an invoice.
type CatalogSnapshot struct {
	ID        string
	Name      string
	Code      string
	UnitPrice float64
	GSTRate   float64
}

// AddCatalogItem appends a new line item for the given catalog entry with
// quantity 1 and no discount. Adding the same catalog id and kind twice is
// a no-op: quantity should be adjusted instead of re-adding.
func AddCatalogItem(items []LineItem, entry CatalogSnapshot, kind ItemKind) []LineItem {
	for i := range items {
		if items[i].CatalogID == entry.ID && items[i].Kind == kind {
			return items
		}
	}
	return append(items, LineItem{
		ID:          uuid.NewString(),
		Kind:        kind,
		CatalogID:   entry.ID,
		Name:        entry.Name,
		SACHSNCode:  entry.Code,
		Quantity:    1,
		UnitPrice:   entry.UnitPrice,
		GSTRate:     entry.GSTRate,
		TotalAmount: entry.UnitPrice,
	})
}

// RemoveItem filters out the line item with the given id.
func RemoveItem(items []LineItem, itemID string) []LineItem {
	out := make([]LineItem, 0, len(items))
	for i := range items {
		if items[i].ID != itemID {
			out = append(out, items[i])
		}
	}
	return out
}

// UpdateQuantity sets the quantity on one line and recomputes only that
// line's total. Quantities below 1 are rejected.
func UpdateQuantity(items []LineItem, itemID string, quantity int) ([]LineItem, error) {
	if quantity < 1 {
		return nil, newValidationError("quantity", "must be at least 1")
	}
	return updateLine(items, itemID, func(li *LineItem) {
		li.Quantity = quantity
		li.TotalAmount = lineTotal(li.UnitPrice, li.DiscountAmount, quantity)
	})
}

// UpdateDiscount sets the per-unit discount on one line and recomputes only
// that line's total. The discount may not exceed the unit price.
func UpdateDiscount(items []LineItem, itemID string, discount float64) ([]LineItem, error) {
	if err := checkAmount("discountAmount", discount); err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == itemID && discount > items[i].UnitPrice {
			return nil, newValidationError("discountAmount", "must not exceed unit price")
		}
	}
	return updateLine(items, itemID, func(li *LineItem) {
		li.DiscountAmount = discount
		li.TotalAmount = lineTotal(li.UnitPrice, discount, li.Quantity)
	})
}

func updateLine(items []LineItem, itemID string, apply func(*LineItem)) ([]LineItem, error) {
	out := make([]LineItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].ID == itemID {
			apply(&out[i])
			return out, nil
		}
	}
	return nil, newValidationError("itemId", "line item %s not found", itemID)
}
