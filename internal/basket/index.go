package basket

import (
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/market-helper/internal/model"
)

// index groups price entries by product so a pass over the list does not
// rescan every price.
type index struct {
	byProduct  map[string][]model.PriceEntry
	storeNames map[string]string
}

func newIndex(c model.Catalog) index {
	idx := index{
		byProduct:  make(map[string][]model.PriceEntry),
		storeNames: make(map[string]string, len(c.Stores)),
	}
	for _, e := range c.Prices {
		idx.byProduct[e.ProductID] = append(idx.byProduct[e.ProductID], e)
	}
	for _, s := range c.Stores {
		if _, ok := idx.storeNames[s.ID]; !ok {
			idx.storeNames[s.ID] = s.Name
		}
	}
	return idx
}

// cheapest returns the lowest priced entry of a product, ties going to the
// smallest store id.
func (idx index) cheapest(productID string) (model.PriceEntry, bool) {
	entries := idx.byProduct[productID]
	if len(entries) == 0 {
		return model.PriceEntry{}, false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		switch e.Price.Cmp(best.Price) {
		case -1:
			best = e
		case 0:
			if e.StoreID < best.StoreID {
				best = e
			}
		}
	}
	return best, true
}

// priceAt returns the first entry of a product at a store, in catalog order.
func (idx index) priceAt(productID, storeID string) (decimal.Decimal, bool) {
	for _, e := range idx.byProduct[productID] {
		if e.StoreID == storeID {
			return e.Price, true
		}
	}
	return decimal.Zero, false
}

// basketAt prices the whole list at one store. complete is false as soon as
// one item has no price there.
func (idx index) basketAt(storeID string, list []model.ListItem) (total decimal.Decimal, complete bool) {
	total = decimal.Zero
	for _, li := range list {
		p, ok := idx.priceAt(li.ProductID, storeID)
		if !ok {
			return decimal.Zero, false
		}
		total = total.Add(p.Mul(decimal.NewFromInt(int64(li.Quantity))))
	}
	return total, true
}
