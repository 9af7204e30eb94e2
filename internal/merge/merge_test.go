package merge

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/market-helper/internal/model"
)

var (
	jan = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb = time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
)

func fixture() model.Catalog {
	return model.Catalog{
		Products: []model.Product{
			{ID: "keep", Name: "Café", Brand: "Marca"},
			{ID: "drop", Name: "cafe especial", Brand: "marca premium"},
			{ID: "other", Name: "Arroz", Brand: "Tio"},
		},
		Stores: []model.Store{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}},
		Prices: []model.PriceEntry{
			{ProductID: "keep", StoreID: "s1", Price: decimal.NewFromInt(10), LastUpdated: jan},
			{ProductID: "drop", StoreID: "s1", Price: decimal.NewFromInt(9), LastUpdated: feb},
			{ProductID: "keep", StoreID: "s2", Price: decimal.NewFromInt(12), LastUpdated: feb},
			{ProductID: "drop", StoreID: "s2", Price: decimal.NewFromInt(11), LastUpdated: jan},
			{ProductID: "drop", StoreID: "s3", Price: decimal.NewFromInt(7), LastUpdated: jan},
			{ProductID: "other", StoreID: "s1", Price: decimal.NewFromInt(3), LastUpdated: jan},
		},
		Purchases: []model.Purchase{{
			ID:      "c1",
			StoreID: "s1",
			Date:    jan,
			Items: []model.PurchaseItem{
				{ProductID: "drop", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(9)},
				{ProductID: "other", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(3)},
			},
		}},
	}
}

func priceOf(t *testing.T, c model.Catalog, product, store string) model.PriceEntry {
	t.Helper()
	var found []model.PriceEntry
	for _, e := range c.Prices {
		if e.ProductID == product && e.StoreID == store {
			found = append(found, e)
		}
	}
	require.Len(t, found, 1, "entries for %s@%s", product, store)
	return found[0]
}

func TestProducts_LastWriteWins(t *testing.T) {
	out, err := Products(fixture(), "keep", "drop")
	require.NoError(t, err)

	s1 := priceOf(t, out, "keep", "s1")
	assert.True(t, s1.Price.Equal(decimal.NewFromInt(9)))
	assert.Equal(t, feb, s1.LastUpdated)

	s2 := priceOf(t, out, "keep", "s2")
	assert.True(t, s2.Price.Equal(decimal.NewFromInt(12)))

	s3 := priceOf(t, out, "keep", "s3")
	assert.True(t, s3.Price.Equal(decimal.NewFromInt(7)))

	for _, e := range out.Prices {
		assert.NotEqual(t, "drop", e.ProductID)
	}
	priceOf(t, out, "other", "s1")
}

func TestProducts_RepointsPurchasesAndRemovesDuplicate(t *testing.T) {
	out, err := Products(fixture(), "keep", "drop")
	require.NoError(t, err)

	_, ok := out.Product("drop")
	assert.False(t, ok)
	assert.Len(t, out.Products, 2)
	assert.Equal(t, "keep", out.Purchases[0].Items[0].ProductID)
	assert.Equal(t, "other", out.Purchases[0].Items[1].ProductID)
}

func TestProducts_DoesNotMutateInput(t *testing.T) {
	in := fixture()
	_, err := Products(in, "keep", "drop")
	require.NoError(t, err)
	assert.Equal(t, fixture(), in)
}

func TestProducts_Errors(t *testing.T) {
	_, err := Products(fixture(), "keep", "keep")
	require.ErrorIs(t, err, ErrSameProduct)

	_, err = Products(fixture(), "missing", "drop")
	require.ErrorIs(t, err, ErrProductNotFound)

	_, err = Products(fixture(), "keep", "missing")
	require.ErrorIs(t, err, ErrProductNotFound)
}
