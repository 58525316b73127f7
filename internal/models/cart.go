package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one menu item in a customer's cart, priced when it was added
type CartLine struct {
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	ImageURL   string          `json:"image_url,omitempty"`
}

// Cart is the single open cart of a customer
type Cart struct {
	ID         uuid.UUID  `json:"id"`
	CustomerID string     `json:"customer_id"`
	Items      []CartLine `json:"items"`
}

// Total is the undiscounted cart value
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Items {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// AddCartItemRequest is the body of POST /cart/items
type AddCartItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}
