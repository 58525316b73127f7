package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"restaurant-pos/internal/memstore"
	"restaurant-pos/internal/models"
)

// MemoryStore keeps carts in process memory
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
}

// NewMemoryStore creates an empty memory cart store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]*models.Cart)}
}

func (s *MemoryStore) GetCart(ctx context.Context, customerID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[customerID]
	if !ok {
		return &models.Cart{CustomerID: customerID, Items: []models.CartLine{}}, nil
	}
	copied := *cart
	copied.Items = append([]models.CartLine{}, cart.Items...)
	return &copied, nil
}

func (s *MemoryStore) AddItem(ctx context.Context, customerID string, line models.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[customerID]
	if !ok {
		cart = &models.Cart{ID: uuid.New(), CustomerID: customerID}
		s.carts[customerID] = cart
	}
	for i := range cart.Items {
		if cart.Items[i].MenuItemID == line.MenuItemID {
			cart.Items[i].Quantity += line.Quantity
			return nil
		}
	}
	cart.Items = append(cart.Items, line)
	return nil
}

func (s *MemoryStore) RemoveItem(ctx context.Context, customerID string, menuItemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cart, ok := s.carts[customerID]; ok {
		for i, line := range cart.Items {
			if line.MenuItemID == menuItemID {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				return nil
			}
		}
	}
	return models.NotFound("cart item", menuItemID)
}

func (s *MemoryStore) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cart := range s.carts {
		if cart.ID != cartID {
			continue
		}
		cleared := cart
		items := cart.Items
		cart.Items = nil
		memstore.OnRollback(ctx, func() {
			s.mu.Lock()
			cleared.Items = items
			s.mu.Unlock()
		})
		return nil
	}
	return nil
}
