package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Store keeps one open cart per customer
type Store interface {
	GetCart(ctx context.Context, customerID string) (*models.Cart, error)
	AddItem(ctx context.Context, customerID string, line models.CartLine) error
	RemoveItem(ctx context.Context, customerID string, menuItemID uuid.UUID) error
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}

// Menu looks up the item being added
type Menu interface {
	Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
}

// Service manages customer carts
type Service struct {
	store  Store
	menu   Menu
	logger *logger.Logger
}

// NewService creates a new cart service
func NewService(store Store, menu Menu, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		menu:   menu,
		logger: log,
	}
}

// GetCart returns the customer's cart, empty when nothing was added yet
func (s *Service) GetCart(ctx context.Context, customerID string) (*models.Cart, error) {
	cart, err := s.store.GetCart(ctx, customerID)
	if err != nil {
		return nil, models.Persistence("get cart", err)
	}
	return cart, nil
}

// ClearCart removes every line of a cart
func (s *Service) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	if err := s.store.ClearCart(ctx, cartID); err != nil {
		return models.Persistence("clear cart", err)
	}
	return nil
}

// AddItem puts quantity units of a menu item in the cart at today's price.
// Stock is only checked here, it is reserved at checkout.
func (s *Service) AddItem(ctx context.Context, customerID string, req models.AddCartItemRequest, requestID string) (*models.Cart, error) {
	menuItemID, err := uuid.Parse(req.MenuItemID)
	if err != nil {
		return nil, &models.ValidationError{Field: "menu_item_id", Message: "must be a uuid"}
	}
	if req.Quantity < 1 || req.Quantity > 50 {
		return nil, &models.ValidationError{Field: "quantity", Message: "must be between 1 and 50"}
	}

	item, err := s.menu.Get(ctx, menuItemID)
	if err != nil {
		return nil, err
	}
	if item.Stock < req.Quantity {
		return nil, &models.InsufficientStockError{ItemID: item.ID, Name: item.Name, Available: item.Stock}
	}

	line := models.CartLine{
		MenuItemID: item.ID,
		Name:       item.Name,
		Quantity:   req.Quantity,
		Price:      item.Price,
		ImageURL:   item.ImageURL,
	}
	if err := s.store.AddItem(ctx, customerID, line); err != nil {
		return nil, models.Persistence("add cart item", err)
	}

	s.logger.Debug("cart_item_added", fmt.Sprintf("Added %d x %s", line.Quantity, line.Name), requestID, map[string]interface{}{
		"customer_id":  customerID,
		"menu_item_id": line.MenuItemID,
	})
	return s.GetCart(ctx, customerID)
}

// RemoveItem drops a menu item from the cart
func (s *Service) RemoveItem(ctx context.Context, customerID string, menuItemID uuid.UUID) (*models.Cart, error) {
	if err := s.store.RemoveItem(ctx, customerID, menuItemID); err != nil {
		return nil, models.Persistence("remove cart item", err)
	}
	return s.GetCart(ctx, customerID)
}
