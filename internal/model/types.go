// Package model defines domain types used by the service.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry the user tracks prices for.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
	PhotoRef string `json:"photo_ref,omitempty"`
}

// Store is a market where products are priced and bought.
type Store struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PriceEntry is one store's recorded price for one product.
//
// At most one entry per (ProductID, StoreID) is expected; the catalog store
// maintains that, the computations in basket and dedupe only assume it.
type PriceEntry struct {
	ProductID   string          `json:"product_id"`
	StoreID     string          `json:"store_id"`
	Price       decimal.Decimal `json:"price"`
	LastUpdated time.Time       `json:"last_updated"`
}

// ListItem is a shopping-list line.
type ListItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PurchaseItem is a line of a recorded purchase. Quantity is a decimal
// because weighed goods are recorded in fractional units.
type PurchaseItem struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Cost returns UnitPrice × Quantity.
func (i PurchaseItem) Cost() decimal.Decimal {
	return i.UnitPrice.Mul(i.Quantity)
}

// Purchase is a past shopping trip at a single store.
type Purchase struct {
	ID      string         `json:"id"`
	Date    time.Time      `json:"date"`
	StoreID string         `json:"store_id"`
	Type    string         `json:"type,omitempty"`
	Items   []PurchaseItem `json:"items"`
}

// Total returns the summed cost of all items.
func (p Purchase) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range p.Items {
		total = total.Add(it.Cost())
	}
	return total
}

// Catalog is the aggregate of everything the user has recorded.
type Catalog struct {
	Products  []Product    `json:"products"`
	Stores    []Store      `json:"stores"`
	Prices    []PriceEntry `json:"prices"`
	Purchases []Purchase   `json:"purchases"`
}

// PriceEvent is a quick price update waiting to be applied to the catalog.
type PriceEvent struct {
	ProductID string          `json:"product_id"`
	StoreID   string          `json:"store_id"`
	Price     decimal.Decimal `json:"price"`
	Sequence  uint64          `json:"-"`
}
