package model

// Clone returns a deep copy so callers can hand the result to code that
// must not observe later mutations.
func (c Catalog) Clone() Catalog {
	out := Catalog{
		Products: append([]Product(nil), c.Products...),
		Stores:   append([]Store(nil), c.Stores...),
		Prices:   append([]PriceEntry(nil), c.Prices...),
	}
	if c.Purchases != nil {
		out.Purchases = make([]Purchase, len(c.Purchases))
		for i, p := range c.Purchases {
			p.Items = append([]PurchaseItem(nil), p.Items...)
			out.Purchases[i] = p
		}
	}
	return out
}

// Product looks a product up by id.
func (c Catalog) Product(id string) (Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Store looks a store up by id.
func (c Catalog) Store(id string) (Store, bool) {
	for _, s := range c.Stores {
		if s.ID == id {
			return s, true
		}
	}
	return Store{}, false
}

// PricesFor returns the entries recorded for a product, in catalog order.
func (c Catalog) PricesFor(productID string) []PriceEntry {
	var out []PriceEntry
	for _, e := range c.Prices {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out
}
