package store

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/market-helper/internal/model"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	require.NoError(t, s.PutStore(model.Store{ID: "s1", Name: "Alpha"}))
	require.NoError(t, s.PutStore(model.Store{ID: "s2", Name: "Beta"}))
	require.NoError(t, s.PutProduct(model.Product{ID: "p1", Name: "Coffee", Brand: "Marca"}))
	require.NoError(t, s.PutProduct(model.Product{ID: "p2", Name: "cafe forte", Brand: "marca"}))
	return s
}

func TestStoreUpsertPriceKeepsOneEntryPerKey(t *testing.T) {
	s := seeded(t)
	require.NoError(t, s.UpsertPrice(model.PriceEntry{ProductID: "p1", StoreID: "s1", Price: decimal.NewFromInt(5)}))
	require.NoError(t, s.UpsertPrice(model.PriceEntry{ProductID: "p1", StoreID: "s1", Price: decimal.NewFromInt(4)}))

	snap := s.Snapshot()
	require.Len(t, snap.Prices, 1)
	assert.True(t, snap.Prices[0].Price.Equal(decimal.NewFromInt(4)))
	assert.False(t, snap.Prices[0].LastUpdated.IsZero())

	err := s.UpsertPrice(model.PriceEntry{ProductID: "p1", StoreID: "s1", Price: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, model.ErrInvalid)
}

func TestStorePriceEventLastWriteWins(t *testing.T) {
	s := seeded(t)
	s.ApplyPriceEvent(model.PriceEvent{ProductID: "p1", StoreID: "s1", Price: decimal.NewFromInt(1), Sequence: 2})
	s.ApplyPriceEvent(model.PriceEvent{ProductID: "p1", StoreID: "s1", Price: decimal.NewFromInt(99), Sequence: 1})
	s.ApplyPriceEvent(model.PriceEvent{ProductID: "p1", StoreID: "s1", Price: decimal.NewFromInt(50), Sequence: 2})

	snap := s.Snapshot()
	require.Len(t, snap.Prices, 1)
	assert.True(t, snap.Prices[0].Price.Equal(decimal.NewFromInt(1)), "got %s", snap.Prices[0].Price)
}

func TestStoreConcurrentPriceEvents(t *testing.T) {
	s := seeded(t)
	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		seq := uint64(i)
		price := decimal.NewFromInt(int64(i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ApplyPriceEvent(model.PriceEvent{ProductID: "p1", StoreID: "s2", Price: price, Sequence: seq})
		}()
	}
	wg.Wait()
	snap := s.Snapshot()
	require.Len(t, snap.Prices, 1)
	assert.True(t, snap.Prices[0].Price.Equal(decimal.NewFromInt(100)))
}

func TestStoreDeleteStoreCascades(t *testing.T) {
	s := seeded(t)
	require.NoError(t, s.UpsertPrice(model.PriceEntry{ProductID: "p1", StoreID: "s1", Price: decimal.NewFromInt(5)}))
	require.NoError(t, s.UpsertPrice(model.PriceEntry{ProductID: "p1", StoreID: "s2", Price: decimal.NewFromInt(6)}))
	require.NoError(t, s.RecordPurchase(model.Purchase{
		ID: "c1", StoreID: "s1",
		Items: []model.PurchaseItem{{ProductID: "p1", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)}},
	}))

	require.NoError(t, s.DeleteStore("s1"))
	snap := s.Snapshot()
	assert.Len(t, snap.Stores, 1)
	require.Len(t, snap.Prices, 1)
	assert.Equal(t, "s2", snap.Prices[0].StoreID)
	assert.Empty(t, snap.Purchases)

	require.ErrorIs(t, s.DeleteStore("s1"), ErrNotFound)
}

func TestStoreDeleteProductDropsPrices(t *testing.T) {
	s := seeded(t)
	require.NoError(t, s.UpsertPrice(model.PriceEntry{ProductID: "p1", StoreID: "s1", Price: decimal.NewFromInt(5)}))
	require.NoError(t, s.DeleteProduct("p1"))
	_, ok := s.GetProduct("p1")
	assert.False(t, ok)
	assert.Empty(t, s.Snapshot().Prices)
	require.ErrorIs(t, s.DeleteProduct("p1"), ErrNotFound)
}

func TestStoreRecordPurchaseUpdatesPrices(t *testing.T) {
	s := seeded(t)
	fixed := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	require.NoError(t, s.UpsertPrice(model.PriceEntry{ProductID: "p1", StoreID: "s1", Price: decimal.NewFromInt(9)}))

	require.NoError(t, s.RecordPurchase(model.Purchase{
		ID: "c1", StoreID: "s1",
		Items: []model.PurchaseItem{
			{ProductID: "p1", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("7.5")},
			{ProductID: "p2", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(3)},
		},
	}))

	snap := s.Snapshot()
	require.Len(t, snap.Purchases, 1)
	assert.Equal(t, fixed, snap.Purchases[0].Date)
	require.Len(t, snap.Prices, 2)
	assert.True(t, snap.Prices[0].Price.Equal(decimal.RequireFromString("7.5")))
	assert.Equal(t, "p2", snap.Prices[1].ProductID)

	err := s.RecordPurchase(model.Purchase{
		StoreID: "nope",
		Items:   []model.PurchaseItem{{ProductID: "p1", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)}},
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreRecordPurchaseRejectsUnknownProduct(t *testing.T) {
	s := seeded(t)
	err := s.RecordPurchase(model.Purchase{
		ID: "c1", StoreID: "s1",
		Items: []model.PurchaseItem{
			{ProductID: "p1", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(4)},
			{ProductID: "ghost", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(2)},
		},
	})
	require.ErrorIs(t, err, ErrNotFound)

	snap := s.Snapshot()
	assert.Empty(t, snap.Purchases)
	assert.Empty(t, snap.Prices)
}

func TestStoreUpsertPriceRequiresProductAndStore(t *testing.T) {
	s := seeded(t)
	err := s.UpsertPrice(model.PriceEntry{ProductID: "ghost", StoreID: "s1", Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrNotFound)
	err = s.UpsertPrice(model.PriceEntry{ProductID: "p1", StoreID: "nowhere", Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, s.Snapshot().Prices)
}

func TestStoreMergeProducts(t *testing.T) {
	s := seeded(t)
	s.ApplyPriceEvent(model.PriceEvent{ProductID: "p2", StoreID: "s1", Price: decimal.NewFromInt(3), Sequence: 7})
	require.NoError(t, s.MergeProducts("p1", "p2"))

	snap := s.Snapshot()
	require.Len(t, snap.Products, 1)
	require.Len(t, snap.Prices, 1)
	assert.Equal(t, "p1", snap.Prices[0].ProductID)

	// The sequence carried over, so an older event for the merged key is stale.
	s.ApplyPriceEvent(model.PriceEvent{ProductID: "p1", StoreID: "s1", Price: decimal.NewFromInt(10), Sequence: 5})
	assert.True(t, s.Snapshot().Prices[0].Price.Equal(decimal.NewFromInt(3)))
}

func TestStoreLatePriceEventAfterMergeIsDropped(t *testing.T) {
	s := NewWithCatalog(model.Catalog{
		Products: []model.Product{
			{ID: "keep", Name: "Café", Brand: "Marca"},
			{ID: "drop", Name: "cafe", Brand: "marca"},
		},
		Stores: []model.Store{{ID: "s1", Name: "Alpha"}},
	})
	require.NoError(t, s.MergeProducts("keep", "drop"))

	// Accepted while "drop" still existed, applied after the merge.
	s.ApplyPriceEvent(model.PriceEvent{ProductID: "drop", StoreID: "s1", Price: decimal.NewFromInt(3), Sequence: 7})

	_, ok := s.GetProduct("drop")
	assert.False(t, ok)
	assert.Empty(t, s.Snapshot().PricesFor("drop"))
}

func TestStoreLatePriceEventAfterDeleteIsDropped(t *testing.T) {
	s := seeded(t)
	require.NoError(t, s.DeleteProduct("p2"))
	s.ApplyPriceEvent(model.PriceEvent{ProductID: "p2", StoreID: "s1", Price: decimal.NewFromInt(3), Sequence: 1})
	assert.Empty(t, s.Snapshot().Prices)

	require.NoError(t, s.DeleteStore("s2"))
	s.ApplyPriceEvent(model.PriceEvent{ProductID: "p1", StoreID: "s2", Price: decimal.NewFromInt(4), Sequence: 2})
	assert.Empty(t, s.Snapshot().Prices)

	// The surviving key still accepts updates.
	s.ApplyPriceEvent(model.PriceEvent{ProductID: "p1", StoreID: "s1", Price: decimal.NewFromInt(5), Sequence: 3})
	require.Len(t, s.Snapshot().Prices, 1)
}

func TestNewWithCatalogCollapsesDuplicatePrices(t *testing.T) {
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewWithCatalog(model.Catalog{
		Prices: []model.PriceEntry{
			{ProductID: "p", StoreID: "s", Price: decimal.NewFromInt(1), LastUpdated: old},
			{ProductID: "p", StoreID: "s", Price: decimal.NewFromInt(2), LastUpdated: old.Add(time.Hour)},
		},
	})
	snap := s.Snapshot()
	require.Len(t, snap.Prices, 1)
	assert.True(t, snap.Prices[0].Price.Equal(decimal.NewFromInt(2)))
}

func TestSnapshotIsolation(t *testing.T) {
	s := seeded(t)
	snap := s.Snapshot()
	snap.Products[0].Name = "mutated"
	p, ok := s.GetProduct("p1")
	require.True(t, ok)
	assert.Equal(t, "Coffee", p.Name)
}
