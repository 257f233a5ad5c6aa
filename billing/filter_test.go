package billing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvoices() []InvoiceSummary {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return []InvoiceSummary{
		{ID: "i1", InvoiceNumber: "GST-20250310-001", CustomerID: "c1", VehicleID: "v1", Status: StatusPending, CreatedAt: base},
		{ID: "i2", InvoiceNumber: "GST-20250311-001", CustomerID: "c2", VehicleID: "v2", Status: StatusPaid, CreatedAt: base.AddDate(0, 0, 1)},
		{ID: "i3", InvoiceNumber: "NON-GST-20250312-001", CustomerID: "c1", VehicleID: "v1", Status: StatusOverdue, CreatedAt: base.AddDate(0, 0, 2)},
	}
}

func testLookups() Lookups {
	return Lookups{
		CustomerNames:  map[string]string{"c1": "Ramesh Kumar", "c2": "Anita Shah"},
		VehicleNumbers: map[string]string{"v1": "MH12AB1234", "v2": "GJ01CD5678"},
	}
}

func TestFilterInvoices_StatusSentinel(t *testing.T) {
	invoices := testInvoices()
	all := FilterInvoices(invoices, Filter{Status: StatusAll}, testLookups())
	none := FilterInvoices(invoices, Filter{}, testLookups())
	assert.Equal(t, none, all)
	assert.Len(t, all, 3)

	paid := FilterInvoices(invoices, Filter{Status: string(StatusPaid)}, testLookups())
	require.Len(t, paid, 1)
	assert.Equal(t, "i2", paid[0].ID)
}

func TestFilterInvoices_DateBoundary(t *testing.T) {
	to := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	invoices := []InvoiceSummary{
		{ID: "edge", CreatedAt: time.Date(2025, 3, 11, 23, 59, 59, 0, time.UTC)},
		{ID: "past", CreatedAt: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
	}

	got := FilterInvoices(invoices, Filter{To: &to}, Lookups{})
	require.Len(t, got, 1)
	assert.Equal(t, "edge", got[0].ID)

	from := time.Date(2025, 3, 11, 18, 30, 0, 0, time.UTC)
	got = FilterInvoices(invoices, Filter{From: &from}, Lookups{})
	// From is truncated to start of day, so both qualify.
	assert.Len(t, got, 2)
}

func TestFilterInvoices_Search(t *testing.T) {
	invoices := testInvoices()

	byCustomer := FilterInvoices(invoices, Filter{SearchTerm: "ramesh"}, testLookups())
	assert.Len(t, byCustomer, 2)

	byVehicle := FilterInvoices(invoices, Filter{SearchTerm: "gj01"}, testLookups())
	require.Len(t, byVehicle, 1)
	assert.Equal(t, "i2", byVehicle[0].ID)

	byNumber := FilterInvoices(invoices, Filter{SearchTerm: "non-gst"}, testLookups())
	require.Len(t, byNumber, 1)
	assert.Equal(t, "i3", byNumber[0].ID)
}

func TestFilterInvoices_MissingReferences(t *testing.T) {
	invoices := testInvoices()

	// Empty lookups: referenced rows are gone. Search cannot match on the
	// missing fields but nothing blows up and number search still works.
	got := FilterInvoices(invoices, Filter{SearchTerm: "ramesh"}, Lookups{})
	assert.Empty(t, got)

	got = FilterInvoices(invoices, Filter{SearchTerm: "20250311"}, Lookups{})
	assert.Len(t, got, 1)
}

func TestPaginate_Reconstruction(t *testing.T) {
	var invoices []InvoiceSummary
	for i := 0; i < 37; i++ {
		invoices = append(invoices, InvoiceSummary{
			ID:        fmt.Sprintf("i%02d", i),
			Status:    StatusPending,
			CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		})
	}

	filtered := FilterInvoices(invoices, Filter{Status: StatusAll}, Lookups{})
	pages := TotalPages(len(filtered), DefaultPageSize)
	assert.Equal(t, 4, pages)

	var rebuilt []InvoiceSummary
	for page := 1; page <= pages; page++ {
		rebuilt = append(rebuilt, Paginate(filtered, page, DefaultPageSize)...)
	}
	assert.Equal(t, filtered, rebuilt)
}

func TestPaginate_PastEnd(t *testing.T) {
	invoices := testInvoices()
	assert.Empty(t, Paginate(invoices, 5, DefaultPageSize))
	assert.Nil(t, Paginate(invoices, 0, DefaultPageSize))
}

func TestTotalPages_MinimumOne(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
}
