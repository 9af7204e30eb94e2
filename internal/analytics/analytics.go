// Package analytics summarizes spending over the purchase history.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/market-helper/internal/model"
)

const (
	topProductsLimit = 10
	categoryWindow   = 6 // months
)

// Entry is one bar of a breakdown.
type Entry struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// Summary is the spending overview of a catalog.
type Summary struct {
	TotalSpent     decimal.Decimal `json:"total_spent"`
	MonthlyAverage decimal.Decimal `json:"monthly_average"`
	PurchaseCount  int             `json:"purchase_count"`
	ItemCount      int             `json:"item_count"`
	// ByCategory only covers the last six months.
	ByCategory  []Entry `json:"by_category"`
	ByMonth     []Entry `json:"by_month"`
	TopProducts []Entry `json:"top_products"`
	ByStore     []Entry `json:"by_store"`
}

// Summarize computes the spending overview as of now. Purchase items whose
// product or store is no longer in the catalog still count towards the
// totals but are left out of the keyed breakdowns.
func Summarize(c model.Catalog, now time.Time) Summary {
	s := Summary{
		TotalSpent:     decimal.Zero,
		MonthlyAverage: decimal.Zero,
		PurchaseCount:  len(c.Purchases),
	}

	products := make(map[string]model.Product, len(c.Products))
	for _, p := range c.Products {
		products[p.ID] = p
	}
	stores := make(map[string]model.Store, len(c.Stores))
	for _, st := range c.Stores {
		stores[st.ID] = st
	}

	cutoff := now.AddDate(0, -categoryWindow, 0)
	byCategory := map[string]decimal.Decimal{}
	byMonth := map[string]decimal.Decimal{}
	byStore := map[string]decimal.Decimal{}
	topQty := map[string]decimal.Decimal{}

	for _, pur := range c.Purchases {
		total := pur.Total()
		s.TotalSpent = s.TotalSpent.Add(total)
		s.ItemCount += len(pur.Items)

		month := pur.Date.UTC().Format("2006-01")
		byMonth[month] = byMonth[month].Add(total)

		if st, ok := stores[pur.StoreID]; ok {
			byStore[st.Name] = byStore[st.Name].Add(total)
		}

		for _, it := range pur.Items {
			p, ok := products[it.ProductID]
			if !ok {
				continue
			}
			topQty[p.Name] = topQty[p.Name].Add(it.Quantity)
			if pur.Date.After(cutoff) {
				byCategory[p.Category] = byCategory[p.Category].Add(it.Cost())
			}
		}
	}

	if n := len(byMonth); n > 0 {
		s.MonthlyAverage = s.TotalSpent.Div(decimal.NewFromInt(int64(n)))
	}

	s.ByCategory = byValueDesc(byCategory)
	s.ByStore = byValueDesc(byStore)
	s.TopProducts = byValueDesc(topQty)
	if len(s.TopProducts) > topProductsLimit {
		s.TopProducts = s.TopProducts[:topProductsLimit]
	}
	s.ByMonth = byNameAsc(byMonth)
	return s
}

func entries(m map[string]decimal.Decimal) []Entry {
	out := make([]Entry, 0, len(m))
	for k, v := range m {
		out = append(out, Entry{Name: k, Value: v})
	}
	return out
}

func byValueDesc(m map[string]decimal.Decimal) []Entry {
	out := entries(m)
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func byNameAsc(m map[string]decimal.Decimal) []Entry {
	out := entries(m)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
