package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

// PostgresRepository keeps orders in the orders, order_items and order_status_log tables
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a postgres backed order repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, o *models.Order) error {
	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		q := r.db.Querier(ctx)

		err := q.QueryRow(ctx, database.InsertOrderSQL,
			o.ID, o.OrderNumber, o.TransactionNumber, o.CustomerID, o.CashierName, o.Status,
			o.TableNumber, o.DineInOrTakeout, o.TotalPrice, o.TotalDiscount, o.DiscountEligible, o.DiscountApplied,
		).Scan(&o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for i, item := range o.Items {
			_, err := q.Exec(ctx, database.InsertOrderItemSQL,
				o.ID, i, item.MenuItemID, item.Name, item.Quantity, item.Price, item.DiscountedPrice, item.ImageURL)
			if err != nil {
				return fmt.Errorf("failed to insert order item %d: %w", i, err)
			}
		}
		return nil
	})
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.get(ctx, database.GetOrderSQL, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.get(ctx, database.GetOrderForUpdateSQL, id)
}

func (r *PostgresRepository) get(ctx context.Context, query string, id uuid.UUID) (*models.Order, error) {
	q := r.db.Querier(ctx)

	o, err := scanOrder(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NotFound("order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if o.Items, err = r.items(ctx, q, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresRepository) List(ctx context.Context, statuses []models.OrderStatus, limit int) ([]models.Order, error) {
	q := r.db.Querier(ctx)

	filter := make([]string, len(statuses))
	for i, s := range statuses {
		filter[i] = string(s)
	}

	rows, err := q.Query(ctx, database.ListOrdersSQL, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	for i := range orders {
		if orders[i].Items, err = r.items(ctx, q, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error) {
	tag, err := r.db.Querier(ctx).Exec(ctx, database.UpdateOrderStatusSQL, id, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) UpdatePricing(ctx context.Context, o *models.Order) error {
	return r.db.WithinTx(ctx, func(ctx context.Context) error {
		q := r.db.Querier(ctx)

		_, err := q.Exec(ctx, database.UpdateOrderPricingSQL,
			o.ID, o.TotalPrice, o.TotalDiscount, o.DiscountEligible, o.DiscountApplied)
		if err != nil {
			return fmt.Errorf("failed to update order pricing: %w", err)
		}

		for i, item := range o.Items {
			if _, err := q.Exec(ctx, database.UpdateOrderItemPriceSQL, o.ID, i, item.DiscountedPrice); err != nil {
				return fmt.Errorf("failed to update order item %d: %w", i, err)
			}
		}
		return nil
	})
}

func (r *PostgresRepository) AppendHistory(ctx context.Context, orderID uuid.UUID, status models.OrderStatus, changedBy string, notes *string) error {
	if _, err := r.db.Querier(ctx).Exec(ctx, database.InsertOrderStatusLogSQL, orderID, status, changedBy, notes); err != nil {
		return fmt.Errorf("failed to log order status: %w", err)
	}
	return nil
}

func (r *PostgresRepository) History(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, database.GetOrderStatusHistorySQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}
	defer rows.Close()

	var history []models.OrderStatusHistory
	for rows.Next() {
		var h models.OrderStatusHistory
		if err := rows.Scan(&h.Status, &h.ChangedBy, &h.ChangedAt, &h.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan order history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func (r *PostgresRepository) items(ctx context.Context, q database.Querier, orderID uuid.UUID) ([]models.OrderItem, error) {
	rows, err := q.Query(ctx, database.GetOrderItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.MenuItemID, &item.Name, &item.Quantity, &item.Price, &item.DiscountedPrice, &item.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.TransactionNumber, &o.CustomerID, &o.CashierName, &o.Status, &o.TableNumber,
		&o.DineInOrTakeout, &o.TotalPrice, &o.TotalDiscount, &o.DiscountEligible, &o.DiscountApplied,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
