package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Store persists stock and sold counters. Reserve must apply every line or none of them.
type Store interface {
	Reserve(ctx context.Context, lines []models.StockLine) error
	Release(ctx context.Context, orderID uuid.UUID, lines []models.StockLine) (bool, error)
	CommitSale(ctx context.Context, orderID uuid.UUID, lines []models.StockLine) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	List(ctx context.Context) ([]models.MenuItem, error)
}

// Ledger reserves, restores and sells menu item stock
type Ledger struct {
	store  Store
	logger *logger.Logger
}

// NewLedger creates a new inventory ledger
func NewLedger(store Store, log *logger.Logger) *Ledger {
	return &Ledger{
		store:  store,
		logger: log,
	}
}

// Reserve decrements stock for every line, or for none when one line cannot be covered
func (l *Ledger) Reserve(ctx context.Context, lines []models.StockLine) error {
	normalized, err := normalize(lines)
	if err != nil {
		return err
	}
	if err := l.store.Reserve(ctx, normalized); err != nil {
		return models.Persistence("reserve stock", err)
	}
	return nil
}

// Release puts reserved stock back. A second release for the same order does nothing.
func (l *Ledger) Release(ctx context.Context, orderID uuid.UUID, lines []models.StockLine) (bool, error) {
	normalized, err := normalize(lines)
	if err != nil {
		return false, err
	}
	released, err := l.store.Release(ctx, orderID, normalized)
	if err != nil {
		return false, models.Persistence("release stock", err)
	}
	if !released {
		l.logger.Debug("stock_release_skipped", "Stock already released for order", "", map[string]interface{}{
			"order_id": orderID,
		})
	}
	return released, nil
}

// CommitSale counts the lines as sold. Stock was already taken by Reserve.
func (l *Ledger) CommitSale(ctx context.Context, orderID uuid.UUID, lines []models.StockLine) (bool, error) {
	normalized, err := normalize(lines)
	if err != nil {
		return false, err
	}
	committed, err := l.store.CommitSale(ctx, orderID, normalized)
	if err != nil {
		return false, models.Persistence("commit sale", err)
	}
	if !committed {
		l.logger.Debug("sale_commit_skipped", "Sale already committed for order", "", map[string]interface{}{
			"order_id": orderID,
		})
	}
	return committed, nil
}

// Get returns one menu item
func (l *Ledger) Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, models.Persistence("get menu item", err)
	}
	return item, nil
}

// List returns the menu with current stock
func (l *Ledger) List(ctx context.Context) ([]models.MenuItem, error) {
	items, err := l.store.List(ctx)
	if err != nil {
		return nil, models.Persistence("list menu items", err)
	}
	return items, nil
}

// normalize merges repeated items and orders lines by id so concurrent multi-item
// reservations lock rows in the same order
func normalize(lines []models.StockLine) ([]models.StockLine, error) {
	index := make(map[uuid.UUID]int, len(lines))
	out := make([]models.StockLine, 0, len(lines))

	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, &models.ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "quantity must be greater than 0",
			}
		}
		if at, ok := index[line.MenuItemID]; ok {
			out[at].Quantity += line.Quantity
			continue
		}
		index[line.MenuItemID] = len(out)
		out = append(out, line)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].MenuItemID.String() < out[j].MenuItemID.String()
	})
	return out, nil
}
