package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItem is a sellable dish with its stock counters
type MenuItem struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Sold     int             `json:"sold"`
	ImageURL string          `json:"image_url,omitempty"`
}

// StockLine is a quantity of one menu item moved by the inventory ledger
type StockLine struct {
	MenuItemID uuid.UUID
	Name       string
	Quantity   int
}
