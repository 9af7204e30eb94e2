// Package basket computes the cheapest way to buy a shopping list across
// the stores of a catalog.
package basket

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/market-helper/internal/model"
)

// Item is a list line resolved to the store it should be bought at.
type Item struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	// Unpriced is set when no store has a price for the product.
	Unpriced bool `json:"unpriced,omitempty"`
}

// LineTotal returns UnitPrice × Quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Group collects the items whose cheapest known price is at one store.
// The unknown group has Unknown set and an empty StoreID; its subtotal is
// always zero.
type Group struct {
	StoreID   string          `json:"store_id"`
	StoreName string          `json:"store_name"`
	Unknown   bool            `json:"unknown,omitempty"`
	Items     []Item          `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Comparison is the cost of buying the whole list at a single store.
type Comparison struct {
	StoreID   string          `json:"store_id"`
	StoreName string          `json:"store_name"`
	Total     decimal.Decimal `json:"total"`
	Saved     decimal.Decimal `json:"saved"`
}

// Result is the output of Optimize.
type Result struct {
	// Groups are ordered by the first list item assigned to them.
	Groups           []Group         `json:"groups"`
	TotalOptimalCost decimal.Decimal `json:"total_optimal_cost"`
	Comparison       []Comparison    `json:"comparison"`
}

// Group returns the group of a store. Pass an empty id for the unknown group.
func (r Result) Group(storeID string) (Group, bool) {
	for _, g := range r.Groups {
		if g.StoreID == storeID {
			return g, true
		}
	}
	return Group{}, false
}

// Unknown returns the group of unpriced items, if any.
func (r Result) Unknown() (Group, bool) {
	for _, g := range r.Groups {
		if g.Unknown {
			return g, true
		}
	}
	return Group{}, false
}

// Optimize assigns every list item to the store with its lowest known price
// and compares the result with buying everything at a single store.
//
// Equal lowest prices resolve to the store with the smallest id. Items whose
// product has no price anywhere, including ids missing from the catalog, go
// to the unknown group and cost nothing in the totals. The catalog and the
// list are only read.
func Optimize(c model.Catalog, list []model.ListItem) (Result, error) {
	if err := model.ValidateList(list); err != nil {
		return Result{}, fmt.Errorf("optimize: %w", err)
	}
	res := Result{
		Groups:           []Group{},
		TotalOptimalCost: decimal.Zero,
		Comparison:       []Comparison{},
	}
	if len(list) == 0 {
		return res, nil
	}

	idx := newIndex(c)
	groupPos := make(map[string]int)
	unknownPos := -1

	for _, li := range list {
		best, ok := idx.cheapest(li.ProductID)
		if !ok {
			if unknownPos < 0 {
				unknownPos = len(res.Groups)
				res.Groups = append(res.Groups, Group{Unknown: true, Subtotal: decimal.Zero})
			}
			g := &res.Groups[unknownPos]
			g.Items = append(g.Items, Item{
				ProductID: li.ProductID,
				Quantity:  li.Quantity,
				UnitPrice: decimal.Zero,
				Unpriced:  true,
			})
			continue
		}

		pos, seen := groupPos[best.StoreID]
		if !seen {
			pos = len(res.Groups)
			groupPos[best.StoreID] = pos
			res.Groups = append(res.Groups, Group{
				StoreID:   best.StoreID,
				StoreName: idx.storeNames[best.StoreID],
				Subtotal:  decimal.Zero,
			})
		}
		it := Item{ProductID: li.ProductID, Quantity: li.Quantity, UnitPrice: best.Price}
		g := &res.Groups[pos]
		g.Items = append(g.Items, it)
		g.Subtotal = g.Subtotal.Add(it.LineTotal())
		res.TotalOptimalCost = res.TotalOptimalCost.Add(it.LineTotal())
	}

	for _, s := range c.Stores {
		total, complete := idx.basketAt(s.ID, list)
		if !complete {
			continue
		}
		res.Comparison = append(res.Comparison, Comparison{
			StoreID:   s.ID,
			StoreName: s.Name,
			Total:     total,
			Saved:     total.Sub(res.TotalOptimalCost),
		})
	}
	return res, nil
}
