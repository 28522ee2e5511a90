// Package cart holds the cart quantity rules shared by the site and the checkout flow.
//
// Quantities live in [MinQuantity, MaxQuantity]. Setting a quantity below MinQuantity
// removes the line instead of clamping it.
package cart

import "github.com/coteroyale/storefront/internal/models"

const (
	MinQuantity = 1
	MaxQuantity = 99
)

// ClampQuantity returns q limited to [MinQuantity, MaxQuantity].
func ClampQuantity(q int) int {
	return max(MinQuantity, min(MaxQuantity, q))
}

// Cart is an ordered list of cart lines.
type Cart struct {
	Items []models.CartItem `json:"items"`
}

// Add puts one unit of item in the cart, or bumps an existing line by one.
func (c *Cart) Add(item models.CartItem) {
	for i := range c.Items {
		if c.Items[i].ID == item.ID {
			c.Items[i].Quantity = ClampQuantity(c.Items[i].Quantity + 1)
			return
		}
	}
	item.Quantity = MinQuantity
	c.Items = append(c.Items, item)
}

// UpdateQuantity sets the quantity of a line. Quantities below MinQuantity remove it.
func (c *Cart) UpdateQuantity(id string, quantity int) {
	if quantity < MinQuantity {
		c.Remove(id)
		return
	}
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Quantity = ClampQuantity(quantity)
		}
	}
}

// Remove drops the line with the given id.
func (c *Cart) Remove(id string) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// TotalItems sums the quantities of all lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}

// TotalPrice sums price*quantity in minor units using the display prices.
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}
