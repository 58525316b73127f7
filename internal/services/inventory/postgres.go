package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

const (
	settlementReleased  = "released"
	settlementCommitted = "committed"
)

// PostgresStore keeps stock in the menu_items table
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a postgres backed inventory store
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Reserve decrements every line with a conditional update; any shortfall rolls the transaction back
func (s *PostgresStore) Reserve(ctx context.Context, lines []models.StockLine) error {
	return s.db.WithinTx(ctx, func(ctx context.Context) error {
		q := s.db.Querier(ctx)
		for _, line := range lines {
			var left int
			err := q.QueryRow(ctx, database.ReserveStockSQL, line.MenuItemID, line.Quantity).Scan(&left)
			if err == nil {
				continue
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to reserve %s: %w", line.MenuItemID, err)
			}

			var name string
			var stock int
			err = q.QueryRow(ctx, database.GetStockSQL, line.MenuItemID).Scan(&name, &stock)
			if errors.Is(err, pgx.ErrNoRows) {
				return models.NotFound("menu item", line.MenuItemID)
			}
			if err != nil {
				return fmt.Errorf("failed to read stock of %s: %w", line.MenuItemID, err)
			}
			return &models.InsufficientStockError{ItemID: line.MenuItemID, Name: name, Available: stock}
		}
		return nil
	})
}

// Release restocks the lines once per order
func (s *PostgresStore) Release(ctx context.Context, orderID uuid.UUID, lines []models.StockLine) (bool, error) {
	return s.settle(ctx, orderID, settlementReleased, database.RestockSQL, lines)
}

// CommitSale adds the lines to sold once per order
func (s *PostgresStore) CommitSale(ctx context.Context, orderID uuid.UUID, lines []models.StockLine) (bool, error) {
	return s.settle(ctx, orderID, settlementCommitted, database.RecordSaleSQL, lines)
}

func (s *PostgresStore) settle(ctx context.Context, orderID uuid.UUID, kind, query string, lines []models.StockLine) (bool, error) {
	var applied bool
	err := s.db.WithinTx(ctx, func(ctx context.Context) error {
		q := s.db.Querier(ctx)

		tag, err := q.Exec(ctx, database.InsertSettlementSQL, orderID, kind)
		if err != nil {
			return fmt.Errorf("failed to record %s settlement: %w", kind, err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		for _, line := range lines {
			tag, err := q.Exec(ctx, query, line.MenuItemID, line.Quantity)
			if err != nil {
				return fmt.Errorf("failed to settle %s: %w", line.MenuItemID, err)
			}
			if tag.RowsAffected() == 0 {
				return models.NotFound("menu item", line.MenuItemID)
			}
		}
		applied = true
		return nil
	})
	return applied, err
}

// Get returns one menu item
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.Querier(ctx).QueryRow(ctx, database.GetMenuItemSQL, id).Scan(
		&item.ID, &item.Name, &item.Price, &item.Stock, &item.Sold, &item.ImageURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NotFound("menu item", id)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns all menu items by name
func (s *PostgresStore) List(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := s.db.Querier(ctx).Query(ctx, database.ListMenuItemsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Stock, &item.Sold, &item.ImageURL); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
