package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt is the print job handed to the receipt printer
type Receipt struct {
	OrderID           uuid.UUID        `json:"order_id"`
	Items             []OrderItem      `json:"items"`
	TransactionNumber string           `json:"transaction_number"`
	TableNumber       int              `json:"table_number"`
	DineInOrTakeout   DiningOption     `json:"dine_in_or_takeout"`
	OrderNumber       int64            `json:"order_number"`
	CashierName       string           `json:"cashier_name"`
	TotalDiscount     *decimal.Decimal `json:"total_discount,omitempty"`
}

// ReceiptFromOrder builds the print job for an order
func ReceiptFromOrder(o *Order) Receipt {
	r := Receipt{
		OrderID:           o.ID,
		Items:             append([]OrderItem(nil), o.Items...),
		TransactionNumber: o.TransactionNumber,
		TableNumber:       o.TableNumber,
		DineInOrTakeout:   o.DineInOrTakeout,
		OrderNumber:       o.OrderNumber,
		CashierName:       o.CashierName,
	}
	if o.DiscountEligible {
		discount := o.TotalDiscount
		r.TotalDiscount = &discount
	}
	return r
}
