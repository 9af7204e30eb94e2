// Package store holds the catalog in memory and keeps its invariants.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fairyhunter13/market-helper/internal/merge"
	"github.com/fairyhunter13/market-helper/internal/model"
	"github.com/fairyhunter13/market-helper/internal/obs"
)

var ErrNotFound = errors.New("not found")

type priceKey struct {
	productID, storeID string
}

// Store is a concurrency-safe catalog. Readers get deep copies through
// Snapshot; every price key holds at most one entry.
type Store struct {
	mu  sync.RWMutex
	cat model.Catalog
	// lastSequence tracks the newest applied PriceEvent per key.
	lastSequence map[priceKey]uint64
	now          func() time.Time
}

func New() *Store {
	return &Store{lastSequence: make(map[priceKey]uint64), now: time.Now}
}

// NewWithCatalog seeds the store, collapsing repeated price keys to the
// most recently updated entry.
func NewWithCatalog(c model.Catalog) *Store {
	s := New()
	seed := c.Clone()
	prices := seed.Prices
	seed.Prices = nil
	s.cat = seed
	for _, e := range prices {
		i := s.priceIndex(e.ProductID, e.StoreID)
		if i < 0 {
			s.cat.Prices = append(s.cat.Prices, e)
			continue
		}
		if e.LastUpdated.After(s.cat.Prices[i].LastUpdated) {
			s.cat.Prices[i] = e
		}
	}
	return s
}

// Snapshot returns a copy of the whole catalog.
func (s *Store) Snapshot() model.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat.Clone()
}

// Counts reports entity totals for metrics.
func (s *Store) Counts() (products, stores, prices, purchases int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cat.Products), len(s.cat.Stores), len(s.cat.Prices), len(s.cat.Purchases)
}

func (s *Store) GetProduct(id string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat.Product(id)
}

// PutProduct inserts or replaces a product by id.
func (s *Store) PutProduct(p model.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cat.Products {
		if s.cat.Products[i].ID == p.ID {
			s.cat.Products[i] = p
			return nil
		}
	}
	s.cat.Products = append(s.cat.Products, p)
	return nil
}

// DeleteProduct removes a product and its prices. Purchase history keeps
// referencing the id.
func (s *Store) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.cat.Products)
	s.cat.Products = filter(s.cat.Products, func(p model.Product) bool { return p.ID != id })
	if len(s.cat.Products) == n {
		return fmt.Errorf("product %q: %w", id, ErrNotFound)
	}
	s.cat.Prices = filter(s.cat.Prices, func(e model.PriceEntry) bool { return e.ProductID != id })
	return nil
}

// PutStore inserts or renames a store.
func (s *Store) PutStore(st model.Store) error {
	if err := st.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cat.Stores {
		if s.cat.Stores[i].ID == st.ID {
			s.cat.Stores[i] = st
			return nil
		}
	}
	s.cat.Stores = append(s.cat.Stores, st)
	return nil
}

// DeleteStore removes a store together with its prices and purchases.
func (s *Store) DeleteStore(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.cat.Stores)
	s.cat.Stores = filter(s.cat.Stores, func(st model.Store) bool { return st.ID != id })
	if len(s.cat.Stores) == n {
		return fmt.Errorf("store %q: %w", id, ErrNotFound)
	}
	s.cat.Prices = filter(s.cat.Prices, func(e model.PriceEntry) bool { return e.StoreID != id })
	s.cat.Purchases = filter(s.cat.Purchases, func(p model.Purchase) bool { return p.StoreID != id })
	return nil
}

// UpsertPrice sets the price of a product at a store. A zero LastUpdated is
// replaced with the current time. Both ids must exist.
func (s *Store) UpsertPrice(e model.PriceEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireKeyLocked(e.ProductID, e.StoreID); err != nil {
		return err
	}
	if e.LastUpdated.IsZero() {
		e.LastUpdated = s.now().UTC()
	}
	s.upsertPriceLocked(e)
	return nil
}

// ApplyPriceEvent applies a queued price update. Events older than, or
// equal to, the last applied sequence for the same key are dropped, and so
// are events whose product or store was removed after they were queued.
func (s *Store) ApplyPriceEvent(ev model.PriceEvent) {
	if ev.Validate() != nil {
		return
	}
	k := priceKey{ev.ProductID, ev.StoreID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireKeyLocked(ev.ProductID, ev.StoreID); err != nil {
		obs.Logger.Debug("price_event_dropped",
			"sequence", ev.Sequence,
			"product_id", ev.ProductID,
			"store_id", ev.StoreID,
			"error", err,
		)
		return
	}
	if last, ok := s.lastSequence[k]; ok && ev.Sequence <= last {
		return
	}
	s.lastSequence[k] = ev.Sequence
	s.upsertPriceLocked(model.PriceEntry{
		ProductID:   ev.ProductID,
		StoreID:     ev.StoreID,
		Price:       ev.Price,
		LastUpdated: s.now().UTC(),
	})
}

// RecordPurchase appends a purchase and makes each item's unit price the
// current price of that product at the purchase store. Nothing is written
// unless the store and every item product exist.
func (s *Store) RecordPurchase(p model.Purchase) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cat.Store(p.StoreID); !ok {
		return fmt.Errorf("store %q: %w", p.StoreID, ErrNotFound)
	}
	for _, it := range p.Items {
		if _, ok := s.cat.Product(it.ProductID); !ok {
			return fmt.Errorf("product %q: %w", it.ProductID, ErrNotFound)
		}
	}
	if p.Date.IsZero() {
		p.Date = s.now().UTC()
	}
	p.Items = append([]model.PurchaseItem(nil), p.Items...)
	s.cat.Purchases = append(s.cat.Purchases, p)
	updated := s.now().UTC()
	for _, it := range p.Items {
		s.upsertPriceLocked(model.PriceEntry{
			ProductID:   it.ProductID,
			StoreID:     p.StoreID,
			Price:       it.UnitPrice,
			LastUpdated: updated,
		})
	}
	return nil
}

// MergeProducts folds dropID into keepID atomically.
func (s *Store) MergeProducts(keepID, dropID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := merge.Products(s.cat, keepID, dropID)
	if err != nil {
		return err
	}
	s.cat = out
	for k, seq := range s.lastSequence {
		if k.productID != dropID {
			continue
		}
		delete(s.lastSequence, k)
		nk := priceKey{keepID, k.storeID}
		if seq > s.lastSequence[nk] {
			s.lastSequence[nk] = seq
		}
	}
	return nil
}

func (s *Store) requireKeyLocked(productID, storeID string) error {
	if _, ok := s.cat.Product(productID); !ok {
		return fmt.Errorf("product %q: %w", productID, ErrNotFound)
	}
	if _, ok := s.cat.Store(storeID); !ok {
		return fmt.Errorf("store %q: %w", storeID, ErrNotFound)
	}
	return nil
}

func (s *Store) upsertPriceLocked(e model.PriceEntry) {
	if i := s.priceIndex(e.ProductID, e.StoreID); i >= 0 {
		s.cat.Prices[i] = e
		return
	}
	s.cat.Prices = append(s.cat.Prices, e)
}

func (s *Store) priceIndex(productID, storeID string) int {
	for i, e := range s.cat.Prices {
		if e.ProductID == productID && e.StoreID == storeID {
			return i
		}
	}
	return -1
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
