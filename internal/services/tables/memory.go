package tables

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"restaurant-pos/internal/memstore"
	"restaurant-pos/internal/models"
)

// MemoryStore keeps occupancy in process memory
type MemoryStore struct {
	mu     sync.Mutex
	tables map[int]*models.Table
}

// NewMemoryStore creates an empty memory table store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[int]*models.Table)}
}

func (s *MemoryStore) Ensure(ctx context.Context, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for n := 1; n <= count; n++ {
		if _, ok := s.tables[n]; !ok {
			s.tables[n] = &models.Table{TableNumber: n, Status: models.TableUnoccupied}
		}
	}
	return nil
}

func (s *MemoryStore) Acquire(ctx context.Context, tableNumber int, orderID uuid.UUID) error {
	return s.update(ctx, tableNumber, func(t *models.Table) error {
		if t.Status == models.TableOccupied {
			return fmt.Errorf("table %d: %w", tableNumber, models.ErrAlreadyOccupied)
		}
		id := orderID
		t.Status = models.TableOccupied
		t.OrderID = &id
		return nil
	})
}

func (s *MemoryStore) Release(ctx context.Context, tableNumber int) error {
	return s.update(ctx, tableNumber, func(t *models.Table) error {
		if t.OrderID != nil {
			return heldByOrder(tableNumber, *t.OrderID)
		}
		t.Status = models.TableUnoccupied
		t.OrderID = nil
		return nil
	})
}

func (s *MemoryStore) ReleaseHeldBy(ctx context.Context, tableNumber int, orderID uuid.UUID) error {
	return s.update(ctx, tableNumber, func(t *models.Table) error {
		if t.OrderID != nil && *t.OrderID == orderID {
			t.Status = models.TableUnoccupied
			t.OrderID = nil
		}
		return nil
	})
}

func (s *MemoryStore) Occupy(ctx context.Context, tableNumber int) error {
	return s.update(ctx, tableNumber, func(t *models.Table) error {
		t.Status = models.TableOccupied
		return nil
	})
}

func (s *MemoryStore) List(ctx context.Context, count int) ([]models.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := make([]models.Table, 0, count)
	for n := 1; n <= count; n++ {
		if t, ok := s.tables[n]; ok {
			tables = append(tables, copyTable(t))
		}
	}
	return tables, nil
}

// update applies fn to one table and records the previous state for rollback
func (s *MemoryStore) update(ctx context.Context, tableNumber int, fn func(t *models.Table) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableNumber]
	if !ok {
		return models.NotFound("table", tableNumber)
	}
	before := copyTable(t)
	if err := fn(t); err != nil {
		return err
	}

	memstore.OnRollback(ctx, func() {
		s.mu.Lock()
		*s.tables[tableNumber] = before
		s.mu.Unlock()
	})
	return nil
}

func copyTable(t *models.Table) models.Table {
	c := *t
	if t.OrderID != nil {
		id := *t.OrderID
		c.OrderID = &id
	}
	return c
}
