// Package merge folds a duplicate product into the one the user keeps.
package merge

import (
	"errors"
	"fmt"

	"github.com/fairyhunter13/market-helper/internal/model"
)

var (
	ErrSameProduct     = errors.New("cannot merge a product into itself")
	ErrProductNotFound = errors.New("product not found")
)

// Products returns a copy of c where dropID has been merged into keepID.
//
// Purchase items of dropID are re-pointed at keepID. Prices of dropID move
// to keepID; when both have a price at the same store the more recently
// updated one survives, ties keeping keepID's entry. The dropped product is
// removed. c is not modified.
func Products(c model.Catalog, keepID, dropID string) (model.Catalog, error) {
	if keepID == dropID {
		return model.Catalog{}, ErrSameProduct
	}
	if _, ok := c.Product(keepID); !ok {
		return model.Catalog{}, fmt.Errorf("keep %q: %w", keepID, ErrProductNotFound)
	}
	if _, ok := c.Product(dropID); !ok {
		return model.Catalog{}, fmt.Errorf("drop %q: %w", dropID, ErrProductNotFound)
	}

	out := c.Clone()

	for i := range out.Purchases {
		for j := range out.Purchases[i].Items {
			if out.Purchases[i].Items[j].ProductID == dropID {
				out.Purchases[i].Items[j].ProductID = keepID
			}
		}
	}

	out.Prices = mergePrices(out.Prices, keepID, dropID)

	products := out.Products[:0]
	for _, p := range out.Products {
		if p.ID != dropID {
			products = append(products, p)
		}
	}
	out.Products = products
	return out, nil
}

// mergePrices keeps unrelated entries in place and appends the merged
// entries of keepID at the end.
func mergePrices(prices []model.PriceEntry, keepID, dropID string) []model.PriceEntry {
	var others, kept, dropped []model.PriceEntry
	for _, e := range prices {
		switch e.ProductID {
		case keepID:
			kept = append(kept, e)
		case dropID:
			dropped = append(dropped, e)
		default:
			others = append(others, e)
		}
	}

	for _, d := range dropped {
		conflict := -1
		for i, k := range kept {
			if k.StoreID == d.StoreID {
				conflict = i
				break
			}
		}
		if conflict < 0 {
			d.ProductID = keepID
			kept = append(kept, d)
			continue
		}
		if d.LastUpdated.After(kept[conflict].LastUpdated) {
			kept[conflict].Price = d.Price
			kept[conflict].LastUpdated = d.LastUpdated
		}
	}
	return append(others, kept...)
}
