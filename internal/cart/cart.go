package cart

import (
	"strings"
	"time"
)

// Item is one cart line. Identity is ProductID: adding the same
// product again merges quantity additively.
type Item struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Qty       int     `json:"qty"`
	Image     string  `json:"image,omitempty"`
}

type Cart struct {
	ID        string    `json:"id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c Cart) Subtotal() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.UnitPrice * float64(it.Qty)
	}
	return total
}

// Sanitize drops entries a persisted cart may have accumulated that
// are no longer valid: blank product ids and non-positive quantities.
func Sanitize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.ProductID) == "" || it.Qty <= 0 {
			continue
		}
		if it.UnitPrice < 0 {
			it.UnitPrice = 0
		}
		out = append(out, it)
	}
	return out
}

// addItem merges it into items: existing product ids accumulate
// quantity, new ones append.
func addItem(items []Item, it Item) []Item {
	for i, have := range items {
		if have.ProductID == it.ProductID {
			items[i].Qty += it.Qty
			return items
		}
	}
	return append(items, it)
}

// setQty updates a line's quantity; qty <= 0 removes the line. The
// input slice is left untouched: callers hold slices handed out by a
// store, and a cart must only change through Put.
func setQty(items []Item, productID string, qty int) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ProductID == productID {
			if qty <= 0 {
				continue
			}
			it.Qty = qty
		}
		out = append(out, it)
	}
	return out
}

func removeItem(items []Item, productID string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ProductID == productID {
			continue
		}
		out = append(out, it)
	}
	return out
}
