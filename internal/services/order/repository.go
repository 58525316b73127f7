package order

import (
	"context"

	"github.com/google/uuid"

	"restaurant-pos/internal/models"
)

// Repository persists orders and their status log
type Repository interface {
	Insert(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// GetForUpdate reads the order and holds it until the surrounding transaction ends
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, statuses []models.OrderStatus, limit int) ([]models.Order, error)
	// UpdateStatus moves the order from -> to and reports false when it was not in from
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error)
	UpdatePricing(ctx context.Context, o *models.Order) error
	AppendHistory(ctx context.Context, orderID uuid.UUID, status models.OrderStatus, changedBy string, notes *string) error
	History(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
}

// TxRunner runs fn as one unit of work
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
