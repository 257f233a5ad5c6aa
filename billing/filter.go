package billing

import (
	"strings"
	"time"
)

// StatusAll is the UI sentinel that disables status filtering. It is not a
// real lifecycle state and is special-cased rather than added to Status.
const StatusAll = "all"

// DefaultPageSize matches the invoice list page length.
const DefaultPageSize = 10

// InvoiceSummary is the slice of an invoice the list filter needs.
type InvoiceSummary struct {
	ID            string
	InvoiceNumber string
	CustomerID    string
	VehicleID     string
	Status        Status
	CreatedAt     time.Time
}

// Filter narrows an invoice collection. Nil date bounds impose no
// constraint on that side; From is truncated to start of day and To
// extended to end of day, both inclusive.
type Filter struct {
	From       *time.Time
	To         *time.Time
	Status     string
	SearchTerm string
}

// Lookups resolve the ids referenced by invoices for text search. Missing
// entries simply cannot match, they never fail the filter.
type Lookups struct {
	CustomerNames  map[string]string
	VehicleNumbers map[string]string
}

// FilterInvoices applies date range, status and free-text search in that
// order. Search matches case-insensitive substrings of the invoice number,
// customer name or vehicle registration number.
func FilterInvoices(invoices []InvoiceSummary, f Filter, lookups Lookups) []InvoiceSummary {
	var from, to time.Time
	if f.From != nil {
		from = StartOfDay(*f.From)
	}
	if f.To != nil {
		to = EndOfDay(*f.To)
	}
	term := strings.ToLower(strings.TrimSpace(f.SearchTerm))

	out := make([]InvoiceSummary, 0, len(invoices))
	for _, inv := range invoices {
		if f.From != nil && inv.CreatedAt.Before(from) {
			continue
		}
		if f.To != nil && inv.CreatedAt.After(to) {
			continue
		}
		if f.Status != "" && f.Status != StatusAll && inv.Status != Status(f.Status) {
			continue
		}
		if term != "" && !matchesSearch(inv, term, lookups) {
			continue
		}
		out = append(out, inv)
	}
	return out
}

func matchesSearch(inv InvoiceSummary, term string, lookups Lookups) bool {
	if strings.Contains(strings.ToLower(inv.InvoiceNumber), term) {
		return true
	}
	if name, ok := lookups.CustomerNames[inv.CustomerID]; ok &&
		strings.Contains(strings.ToLower(name), term) {
		return true
	}
	if number, ok := lookups.VehicleNumbers[inv.VehicleID]; ok &&
		strings.Contains(strings.ToLower(number), term) {
		return true
	}
	return false
}

// Paginate returns the 1-indexed page of the given size. Pages past the end
// come back empty rather than erroring.
func Paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages is ceil(count / pageSize) with a floor of 1 so an empty result
// still renders one page.
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	pages := (count + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// EndOfDay extends t to the last nanosecond of its day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
