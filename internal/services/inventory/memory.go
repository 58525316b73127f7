package inventory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"restaurant-pos/internal/memstore"
	"restaurant-pos/internal/models"
)

type settlementKey struct {
	orderID uuid.UUID
	kind    string
}

// MemoryStore keeps stock in process memory
type MemoryStore struct {
	mu      sync.Mutex
	items   map[uuid.UUID]*models.MenuItem
	settled map[settlementKey]bool
}

// NewMemoryStore creates a memory store holding the given items
func NewMemoryStore(items ...models.MenuItem) *MemoryStore {
	s := &MemoryStore{
		items:   make(map[uuid.UUID]*models.MenuItem, len(items)),
		settled: make(map[settlementKey]bool),
	}
	for _, item := range items {
		item := item
		s.items[item.ID] = &item
	}
	return s
}

// Reserve checks every line before touching any of them
func (s *MemoryStore) Reserve(ctx context.Context, lines []models.StockLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range lines {
		item, ok := s.items[line.MenuItemID]
		if !ok {
			return models.NotFound("menu item", line.MenuItemID)
		}
		if item.Stock < line.Quantity {
			return &models.InsufficientStockError{ItemID: item.ID, Name: item.Name, Available: item.Stock}
		}
	}
	for _, line := range lines {
		s.items[line.MenuItemID].Stock -= line.Quantity
	}

	memstore.OnRollback(ctx, func() { s.adjust(lines, +1, 0) })
	return nil
}

// Release restocks the lines once per order
func (s *MemoryStore) Release(ctx context.Context, orderID uuid.UUID, lines []models.StockLine) (bool, error) {
	return s.settle(ctx, settlementKey{orderID, settlementReleased}, lines, 1, 0)
}

// CommitSale adds the lines to sold once per order
func (s *MemoryStore) CommitSale(ctx context.Context, orderID uuid.UUID, lines []models.StockLine) (bool, error) {
	return s.settle(ctx, settlementKey{orderID, settlementCommitted}, lines, 0, 1)
}

func (s *MemoryStore) settle(ctx context.Context, key settlementKey, lines []models.StockLine, stockSign, soldSign int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settled[key] {
		return false, nil
	}
	for _, line := range lines {
		if _, ok := s.items[line.MenuItemID]; !ok {
			return false, models.NotFound("menu item", line.MenuItemID)
		}
	}

	s.settled[key] = true
	for _, line := range lines {
		item := s.items[line.MenuItemID]
		item.Stock += stockSign * line.Quantity
		item.Sold += soldSign * line.Quantity
	}

	memstore.OnRollback(ctx, func() {
		s.mu.Lock()
		delete(s.settled, key)
		s.mu.Unlock()
		s.adjust(lines, -stockSign, -soldSign)
	})
	return true, nil
}

func (s *MemoryStore) adjust(lines []models.StockLine, stockSign, soldSign int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range lines {
		if item, ok := s.items[line.MenuItemID]; ok {
			item.Stock += stockSign * line.Quantity
			item.Sold += soldSign * line.Quantity
		}
	}
}

// Get returns a copy of one menu item
func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, models.NotFound("menu item", id)
	}
	copied := *item
	return &copied, nil
}

// List returns copies of all menu items by name
func (s *MemoryStore) List(ctx context.Context) ([]models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.MenuItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}
