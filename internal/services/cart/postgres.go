package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

// PostgresStore keeps carts in the carts and cart_items tables
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a postgres backed cart store
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetCart(ctx context.Context, customerID string) (*models.Cart, error) {
	q := s.db.Querier(ctx)

	cart := &models.Cart{CustomerID: customerID, Items: []models.CartLine{}}
	err := q.QueryRow(ctx, database.GetCartSQL, customerID).Scan(&cart.ID, &cart.CustomerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	rows, err := q.Query(ctx, database.GetCartItemsSQL, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.CartLine
		if err := rows.Scan(&line.MenuItemID, &line.Name, &line.Quantity, &line.Price, &line.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, line)
	}
	return cart, rows.Err()
}

func (s *PostgresStore) AddItem(ctx context.Context, customerID string, line models.CartLine) error {
	return s.db.WithinTx(ctx, func(ctx context.Context) error {
		q := s.db.Querier(ctx)

		var cartID uuid.UUID
		if err := q.QueryRow(ctx, database.UpsertCartSQL, uuid.New(), customerID).Scan(&cartID); err != nil {
			return fmt.Errorf("failed to open cart: %w", err)
		}
		_, err := q.Exec(ctx, database.UpsertCartItemSQL, cartID, line.MenuItemID, line.Quantity, line.Price, line.ImageURL)
		if err != nil {
			return fmt.Errorf("failed to add cart item: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) RemoveItem(ctx context.Context, customerID string, menuItemID uuid.UUID) error {
	q := s.db.Querier(ctx)

	var cartID uuid.UUID
	var owner string
	err := q.QueryRow(ctx, database.GetCartSQL, customerID).Scan(&cartID, &owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NotFound("cart item", menuItemID)
	}
	if err != nil {
		return fmt.Errorf("failed to get cart: %w", err)
	}

	tag, err := q.Exec(ctx, database.DeleteCartItemSQL, cartID, menuItemID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("cart item", menuItemID)
	}
	return nil
}

func (s *PostgresStore) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	if _, err := s.db.Querier(ctx).Exec(ctx, database.ClearCartSQL, cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
