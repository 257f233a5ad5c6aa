package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var oilChange = CatalogSnapshot{
	ID:        "svc-oil",
	Name:      "Oil Change",
	Code:      "998714",
	UnitPrice: 600,
	GSTRate:   18,
}

func TestAddCatalogItem_Snapshot(t *testing.T) {
	items := AddCatalogItem(nil, oilChange, KindService)
	require.Len(t, items, 1)

	li := items[0]
	assert.NotEmpty(t, li.ID)
	assert.Equal(t, "svc-oil", li.CatalogID)
	assert.Equal(t, "Oil Change", li.Name)
	assert.Equal(t, "998714", li.SACHSNCode)
	assert.Equal(t, 1, li.Quantity)
	assert.Equal(t, 600.0, li.UnitPrice)
	assert.Equal(t, 18.0, li.GSTRate)
	assert.Equal(t, 600.0, li.TotalAmount)
}

func TestAddCatalogItem_DuplicateIsNoOp(t *testing.T) {
	items := AddCatalogItem(nil, oilChange, KindService)
	again := AddCatalogItem(items, oilChange, KindService)
	assert.Len(t, again, 1)

	// Same catalog id under a different kind is a distinct line.
	asPart := AddCatalogItem(again, oilChange, KindPart)
	assert.Len(t, asPart, 2)
}

func TestUpdateQuantity_RecomputesOnlyThatLine(t *testing.T) {
	items := AddCatalogItem(nil, oilChange, KindService)
	items = AddCatalogItem(items, CatalogSnapshot{ID: "part-filter", Name: "Oil Filter", Code: "8421", UnitPrice: 350, GSTRate: 28}, KindPart)

	updated, err := UpdateQuantity(items, items[1].ID, 3)
	require.NoError(t, err)

	assert.Equal(t, 1050.0, updated[1].TotalAmount)
	assert.Equal(t, items[0], updated[0])
	// Input slice untouched.
	assert.Equal(t, 350.0, items[1].TotalAmount)
}

func TestUpdateQuantity_RejectsZero(t *testing.T) {
	items := AddCatalogItem(nil, oilChange, KindService)
	_, err := UpdateQuantity(items, items[0].ID, 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUpdateDiscount(t *testing.T) {
	items := AddCatalogItem(nil, oilChange, KindService)
	items, err := UpdateQuantity(items, items[0].ID, 2)
	require.NoError(t, err)

	updated, err := UpdateDiscount(items, items[0].ID, 100)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, updated[0].TotalAmount)

	// Discount equal to unit price zeroes the line.
	updated, err = UpdateDiscount(updated, updated[0].ID, 600)
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated[0].TotalAmount)

	_, err = UpdateDiscount(updated, updated[0].ID, 601)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUpdate_UnknownItem(t *testing.T) {
	items := AddCatalogItem(nil, oilChange, KindService)

	_, err := UpdateQuantity(items, "missing", 2)
	assert.Error(t, err)
	_, err = UpdateDiscount(items, "missing", 10)
	assert.Error(t, err)
}

func TestRemoveItem(t *testing.T) {
	items := AddCatalogItem(nil, oilChange, KindService)
	items = AddCatalogItem(items, CatalogSnapshot{ID: "part-filter", Name: "Oil Filter", UnitPrice: 350}, KindPart)

	out := RemoveItem(items, items[0].ID)
	require.Len(t, out, 1)
	assert.Equal(t, "part-filter", out[0].CatalogID)

	// Removing an unknown id leaves the set unchanged.
	assert.Len(t, RemoveItem(out, "missing"), 1)
}
