package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiningOption says whether the customer eats in or takes the order out
type DiningOption string

const (
	DineIn  DiningOption = "dine in"
	Takeout DiningOption = "takeout"
)

// ParseDiningOption accepts the stored values and the common underscore/dash spellings
func ParseDiningOption(s string) (DiningOption, error) {
	switch s {
	case "dine in", "dine_in", "dine-in", "dinein":
		return DineIn, nil
	case "takeout", "take_out", "take-out":
		return Takeout, nil
	default:
		return "", &ValidationError{Field: "dine_in_or_takeout", Message: fmt.Sprintf("unknown dining option %q", s)}
	}
}

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusApproved  OrderStatus = "approved"
	StatusRejected  OrderStatus = "rejected"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

var transitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:   {StatusApproved: true, StatusRejected: true},
	StatusApproved:  {StatusCompleted: true, StatusCancelled: true},
	StatusRejected:  {},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether from -> to is an edge of the order state machine
func CanTransition(from, to OrderStatus) bool {
	return transitions[from][to]
}

// IsTerminal reports whether no transition leaves the status
func (s OrderStatus) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// OrderItem is a cart line frozen into an order. Price is the original unit price and never changes.
type OrderItem struct {
	MenuItemID      uuid.UUID       `json:"menu_item_id"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	ImageURL        string          `json:"image_url,omitempty"`
}

// Subtotal is the discounted line total
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.DiscountedPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a checked-out cart
type Order struct {
	ID                uuid.UUID       `json:"id"`
	CustomerID        string          `json:"customer_id"`
	CashierName       string          `json:"cashier_name"`
	Items             []OrderItem     `json:"items"`
	Status            OrderStatus     `json:"status"`
	TableNumber       int             `json:"table_number"`
	DineInOrTakeout   DiningOption    `json:"dine_in_or_takeout"`
	OrderNumber       int64           `json:"order_number"`
	TransactionNumber string          `json:"transaction_number"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	TotalDiscount     decimal.Decimal `json:"total_discount"`
	DiscountEligible  bool            `json:"discount_eligible"`
	DiscountApplied   bool            `json:"discount_applied"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// HoldsTable reports whether the order occupies a physical table
func (o *Order) HoldsTable() bool {
	return o.DineInOrTakeout == DineIn && o.TableNumber != 0
}

// StockLines returns the quantities the order reserved per menu item
func (o *Order) StockLines() []StockLine {
	lines := make([]StockLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, StockLine{MenuItemID: item.MenuItemID, Name: item.Name, Quantity: item.Quantity})
	}
	return lines
}

// OrderStatusHistory represents an entry in the order status log
type OrderStatusHistory struct {
	Status    OrderStatus `json:"status"`
	ChangedBy string      `json:"changed_by"`
	ChangedAt time.Time   `json:"timestamp"`
	Notes     *string     `json:"notes,omitempty"`
}

// CheckoutRequest is what the customer submits when turning the cart into an order
type CheckoutRequest struct {
	DineInOrTakeout  string `json:"dine_in_or_takeout"`
	TableNumber      int    `json:"table_number"`
	DiscountEligible bool   `json:"discount_eligible"`
}
