package domain

import (
	"slices"
	"time"
)

// DefaultCurrency is the only currency the storefront sells in.
const DefaultCurrency = "RUB"

// Cart is a session's selection of products. Its operations never modify the
// receiver: each returns the next cart state.
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	Currency  string     `json:"currency"`
	Version   int        `json:"version"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// CartItem is a catalog product with the quantity selected. Quantity is always positive.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal is Price * Quantity.
func (i CartItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// NewCart returns an empty cart for the session.
func NewCart(sessionID string) Cart {
	return Cart{
		SessionID: sessionID,
		Items:     []CartItem{},
		Currency:  DefaultCurrency,
	}
}

// withItems returns a copy of c holding items.
func (c Cart) withItems(items []CartItem) Cart {
	c.Items = items
	return c
}

func (c Cart) indexOf(productID int) int {
	return slices.IndexFunc(c.Items, func(item CartItem) bool { return item.ID == productID })
}

// AddItem adds one unit of p. An existing entry for p.ID keeps its position
// and has its quantity incremented; otherwise p is appended with quantity 1.
func (c Cart) AddItem(p Product) Cart {
	items := slices.Clone(c.Items)
	if i := c.indexOf(p.ID); i >= 0 {
		items[i].Quantity++
		return c.withItems(items)
	}
	return c.withItems(append(items, CartItem{Product: p, Quantity: 1}))
}

// RemoveItem drops the entry for productID. Absent ids leave the cart as is.
func (c Cart) RemoveItem(productID int) Cart {
	i := c.indexOf(productID)
	if i < 0 {
		return c
	}
	return c.withItems(slices.Delete(slices.Clone(c.Items), i, i+1))
}

// UpdateQuantity shifts the quantity of productID by delta. A resulting
// quantity of zero or less removes the entry. Absent ids leave the cart as is.
func (c Cart) UpdateQuantity(productID, delta int) Cart {
	i := c.indexOf(productID)
	if i < 0 {
		return c
	}
	next := c.Items[i].Quantity + delta
	if next <= 0 {
		return c.RemoveItem(productID)
	}
	items := slices.Clone(c.Items)
	items[i].Quantity = next
	return c.withItems(items)
}

// Item returns the entry for productID.
func (c Cart) Item(productID int) (CartItem, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i], true
	}
	return CartItem{}, false
}

// Total is the sum of all line totals.
func (c Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	return total
}

// Count is the number of units in the cart.
func (c Cart) Count() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Line is one row of an order summary.
type Line struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// Lines returns the order summary rows in cart order.
func (c Cart) Lines() []Line {
	lines := make([]Line, len(c.Items))
	for i, item := range c.Items {
		lines[i] = Line{
			ProductID: item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			LineTotal: item.LineTotal(),
		}
	}
	return lines
}
