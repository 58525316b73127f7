package tables

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Store keeps the occupancy of tables 1..N. Acquire must be a single conditional update.
type Store interface {
	Ensure(ctx context.Context, count int) error
	Acquire(ctx context.Context, tableNumber int, orderID uuid.UUID) error
	Release(ctx context.Context, tableNumber int) error
	ReleaseHeldBy(ctx context.Context, tableNumber int, orderID uuid.UUID) error
	Occupy(ctx context.Context, tableNumber int) error
	List(ctx context.Context, count int) ([]models.Table, error)
}

func heldByOrder(tableNumber int, orderID uuid.UUID) error {
	return fmt.Errorf("table %d is held by order %s: %w", tableNumber, orderID, models.ErrAlreadyOccupied)
}

// Registry hands out physical tables. Table 0 is virtual and never occupied.
type Registry struct {
	store  Store
	count  int
	logger *logger.Logger
}

// NewRegistry creates a registry over tables 1..count
func NewRegistry(store Store, count int, log *logger.Logger) *Registry {
	return &Registry{
		store:  store,
		count:  count,
		logger: log,
	}
}

// Count is the number of physical tables
func (r *Registry) Count() int {
	return r.count
}

// EnsureTables creates the rows for tables 1..N that do not exist yet
func (r *Registry) EnsureTables(ctx context.Context) error {
	if err := r.store.Ensure(ctx, r.count); err != nil {
		return models.Persistence("ensure tables", err)
	}
	return nil
}

// Acquire marks the table occupied by orderID, failing with ErrAlreadyOccupied when it is held
func (r *Registry) Acquire(ctx context.Context, tableNumber int, orderID uuid.UUID) error {
	if tableNumber == models.NoTable {
		return nil
	}
	if err := r.checkRange(tableNumber); err != nil {
		return err
	}
	if err := r.store.Acquire(ctx, tableNumber, orderID); err != nil {
		return models.Persistence("acquire table", err)
	}
	return nil
}

// Release frees a table staff marked occupied. A table held by an order stays held and
// Release fails with ErrAlreadyOccupied; the order frees it when it finishes. Releasing a
// free table is fine.
func (r *Registry) Release(ctx context.Context, tableNumber int) error {
	if tableNumber == models.NoTable {
		return nil
	}
	if err := r.checkRange(tableNumber); err != nil {
		return err
	}
	if err := r.store.Release(ctx, tableNumber); err != nil {
		return models.Persistence("release table", err)
	}
	return nil
}

// ReleaseHeldBy frees the table only while orderID still holds it, so a finished order
// never frees a table staff already handed to someone else
func (r *Registry) ReleaseHeldBy(ctx context.Context, tableNumber int, orderID uuid.UUID) error {
	if tableNumber == models.NoTable {
		return nil
	}
	if err := r.checkRange(tableNumber); err != nil {
		return err
	}
	if err := r.store.ReleaseHeldBy(ctx, tableNumber, orderID); err != nil {
		return models.Persistence("release table", err)
	}
	return nil
}

// SetStatus is the staff override from the table board
func (r *Registry) SetStatus(ctx context.Context, tableNumber int, status models.TableStatus, requestID string) error {
	if err := r.checkRange(tableNumber); err != nil {
		return err
	}

	var err error
	switch status {
	case models.TableOccupied:
		err = r.store.Occupy(ctx, tableNumber)
	case models.TableUnoccupied:
		err = r.store.Release(ctx, tableNumber)
	default:
		return &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown table status %q", status)}
	}
	if err != nil {
		return models.Persistence("set table status", err)
	}

	r.logger.Info("table_status_set", fmt.Sprintf("Table %d set to %s", tableNumber, status), requestID, map[string]interface{}{
		"table_number": tableNumber,
		"status":       status,
	})
	return nil
}

// List returns the occupancy board
func (r *Registry) List(ctx context.Context) ([]models.Table, error) {
	tables, err := r.store.List(ctx, r.count)
	if err != nil {
		return nil, models.Persistence("list tables", err)
	}
	return tables, nil
}

func (r *Registry) checkRange(tableNumber int) error {
	if tableNumber < 1 || tableNumber > r.count {
		return models.NotFound("table", tableNumber)
	}
	return nil
}
