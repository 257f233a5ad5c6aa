package billing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals_GSTInvoice(t *testing.T) {
	items := []LineItem{
		{ID: "1", Kind: KindService, Quantity: 1, UnitPrice: 1000, GSTRate: 18, TotalAmount: 1000},
	}

	totals, err := ComputeTotals(items, 500, nil, 10, TypeGST)
	require.NoError(t, err)

	assert.Equal(t, 1500.0, totals.Subtotal)
	assert.Equal(t, 150.0, totals.DiscountAmount)
	assert.Equal(t, 90.0, totals.CGST)
	assert.Equal(t, 90.0, totals.SGST)
	assert.Equal(t, 180.0, totals.TotalGST)
	assert.Equal(t, 1530.0, totals.Total)
}

func TestComputeTotals_NonGSTInvoice(t *testing.T) {
	items := []LineItem{
		{ID: "1", Kind: KindService, Quantity: 1, UnitPrice: 1000, GSTRate: 18, TotalAmount: 1000},
	}

	totals, err := ComputeTotals(items, 500, nil, 10, TypeNonGST)
	require.NoError(t, err)

	assert.Equal(t, 0.0, totals.CGST)
	assert.Equal(t, 0.0, totals.SGST)
	assert.Equal(t, 0.0, totals.TotalGST)
	assert.Equal(t, 1350.0, totals.Total)
}

func TestComputeTotals_ExtraChargesInSubtotal(t *testing.T) {
	items := []LineItem{
		{ID: "1", Kind: KindPart, Quantity: 2, UnitPrice: 250, GSTRate: 28, TotalAmount: 500},
	}
	extra := []ExtraCharge{{Name: "Towing", Amount: 300}, {Name: "Consumables", Amount: 50}}

	totals, err := ComputeTotals(items, 0, extra, 0, TypeGST)
	require.NoError(t, err)

	assert.Equal(t, 850.0, totals.Subtotal)
	// GST applies to the catalog line only, not to extra charges.
	assert.Equal(t, 140.0, totals.TotalGST)
	assert.Equal(t, 990.0, totals.Total)
}

func TestComputeTotals_InvariantHolds(t *testing.T) {
	items := []LineItem{
		{ID: "1", Kind: KindService, Quantity: 3, UnitPrice: 450, DiscountAmount: 50, GSTRate: 18, TotalAmount: 1200},
		{ID: "2", Kind: KindPart, Quantity: 1, UnitPrice: 2200, GSTRate: 28, TotalAmount: 2200},
	}

	for _, invType := range []InvoiceType{TypeGST, TypeNonGST} {
		totals, err := ComputeTotals(items, 750, []ExtraCharge{{Name: "Pickup", Amount: 150}}, 5, invType)
		require.NoError(t, err)
		assert.InDelta(t, totals.Subtotal-totals.DiscountAmount+totals.TotalGST, totals.Total, 1e-9)
		assert.InDelta(t, totals.CGST+totals.SGST, totals.TotalGST, 1e-9)
		assert.InDelta(t, totals.CGST, totals.SGST, 1e-9)
	}
}

func TestComputeTotals_Rejections(t *testing.T) {
	valid := []LineItem{{ID: "1", Quantity: 1, UnitPrice: 100, TotalAmount: 100}}

	tests := []struct {
		name     string
		items    []LineItem
		labor    float64
		extra    []ExtraCharge
		discount float64
		invType  InvoiceType
	}{
		{"negative labor", valid, -1, nil, 0, TypeGST},
		{"nan labor", valid, math.NaN(), nil, 0, TypeGST},
		{"discount over 100", valid, 0, nil, 101, TypeGST},
		{"negative discount", valid, 0, nil, -1, TypeGST},
		{"negative extra charge", valid, 0, []ExtraCharge{{Name: "x", Amount: -5}}, 0, TypeGST},
		{"zero quantity line", []LineItem{{ID: "1", Quantity: 0, UnitPrice: 100}}, 0, nil, 0, TypeGST},
		{"negative unit price", []LineItem{{ID: "1", Quantity: 1, UnitPrice: -100}}, 0, nil, 0, TypeGST},
		{"unknown invoice type", valid, 0, nil, 0, InvoiceType("vat")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeTotals(tc.items, tc.labor, tc.extra, tc.discount, tc.invType)
			require.Error(t, err)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.56, Round2(10.556))
	assert.Equal(t, 0.0, Round2(0.0049))
	assert.Equal(t, 180.0, Round2(180.00000001))
}
