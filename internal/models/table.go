package models

import "github.com/google/uuid"

// TableStatus is the occupancy of a physical table
type TableStatus string

const (
	TableUnoccupied TableStatus = "unoccupied"
	TableOccupied   TableStatus = "occupied"
)

// NoTable is the virtual slot used by takeout and by dine-in guests without a numbered table
const NoTable = 0

// Table is one physical table of the floor
type Table struct {
	TableNumber int         `json:"table_number"`
	Status      TableStatus `json:"status"`
	OrderID     *uuid.UUID  `json:"order_id,omitempty"`
}
