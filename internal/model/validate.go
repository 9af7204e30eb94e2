package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid marks input that violates the documented shape of a type.
var ErrInvalid = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks required product fields.
func (p Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return invalid("product id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return invalid("product name is required")
	}
	return nil
}

// Validate checks required store fields.
func (s Store) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return invalid("store id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return invalid("store name is required")
	}
	return nil
}

// Validate checks the price entry keys and that the price is not negative.
func (e PriceEntry) Validate() error {
	if e.ProductID == "" || e.StoreID == "" {
		return invalid("product_id and store_id are required")
	}
	if e.Price.IsNegative() {
		return invalid("price must be >= 0")
	}
	return nil
}

// Validate checks a price event the same way as a price entry.
func (ev PriceEvent) Validate() error {
	return PriceEntry{ProductID: ev.ProductID, StoreID: ev.StoreID, Price: ev.Price}.Validate()
}

// Validate checks a shopping-list line.
func (it ListItem) Validate() error {
	if it.ProductID == "" {
		return invalid("list item product_id is required")
	}
	if it.Quantity < 1 {
		return invalid("list item %q quantity must be >= 1, got %d", it.ProductID, it.Quantity)
	}
	return nil
}

// ValidateList validates every line of a shopping list.
func ValidateList(list []ListItem) error {
	for _, it := range list {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a purchase and each of its items.
func (p Purchase) Validate() error {
	if p.StoreID == "" {
		return invalid("purchase store_id is required")
	}
	if len(p.Items) == 0 {
		return invalid("purchase needs at least one item")
	}
	for _, it := range p.Items {
		if it.ProductID == "" {
			return invalid("purchase item product_id is required")
		}
		if !it.Quantity.IsPositive() {
			return invalid("purchase item %q quantity must be > 0", it.ProductID)
		}
		if !it.UnitPrice.IsPositive() {
			return invalid("purchase item %q unit_price must be > 0", it.ProductID)
		}
	}
	return nil
}
