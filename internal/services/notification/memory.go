package notification

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"restaurant-pos/internal/memstore"
	"restaurant-pos/internal/models"
)

// MemoryStore keeps notifications in process memory
type MemoryStore struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.Notification
}

// NewMemoryStore creates an empty memory notification store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[uuid.UUID]*models.Notification)}
}

func (s *MemoryStore) Insert(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	stored := *n
	s.byID[n.ID] = &stored
	s.mu.Unlock()

	memstore.OnRollback(ctx, func() {
		s.mu.Lock()
		delete(s.byID, n.ID)
		s.mu.Unlock()
	})
	return nil
}

func (s *MemoryStore) List(ctx context.Context, customerID string, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []models.Notification
	for _, n := range s.byID {
		if n.CustomerID == customerID {
			list = append(list, *n)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].OrderNumber > list[j].OrderNumber
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *MemoryStore) MarkRead(ctx context.Context, id uuid.UUID, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.byID[id]
	if !ok || n.CustomerID != customerID {
		return models.NotFound("notification", id)
	}
	n.Read = true
	return nil
}
