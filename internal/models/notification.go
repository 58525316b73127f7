package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity is how the customer's client highlights a notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// NotificationTitle is used for every order update
const NotificationTitle = "Checkout Update"

// Notification is attached to a customer profile on order transitions
type Notification struct {
	ID          uuid.UUID   `json:"id"`
	CustomerID  string      `json:"customer_id"`
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber int64       `json:"order_number"`
	Status      OrderStatus `json:"status"`
	Title       string      `json:"title"`
	Message     string      `json:"message"`
	Severity    Severity    `json:"severity"`
	Read        bool        `json:"read"`
	CreatedAt   time.Time   `json:"created_at"`
}
