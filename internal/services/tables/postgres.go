package tables

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

// PostgresStore keeps occupancy in the dining_tables table
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a postgres backed table store
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ensure(ctx context.Context, count int) error {
	if _, err := s.db.Querier(ctx).Exec(ctx, database.EnsureTablesSQL, count); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

func (s *PostgresStore) Acquire(ctx context.Context, tableNumber int, orderID uuid.UUID) error {
	q := s.db.Querier(ctx)

	tag, err := q.Exec(ctx, database.AcquireTableSQL, tableNumber, orderID)
	if err != nil {
		return fmt.Errorf("failed to acquire table %d: %w", tableNumber, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var status models.TableStatus
	var holder *uuid.UUID
	err = q.QueryRow(ctx, database.GetTableSQL, tableNumber).Scan(new(int), &status, &holder)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NotFound("table", tableNumber)
	}
	if err != nil {
		return fmt.Errorf("failed to read table %d: %w", tableNumber, err)
	}
	return fmt.Errorf("table %d: %w", tableNumber, models.ErrAlreadyOccupied)
}

func (s *PostgresStore) Release(ctx context.Context, tableNumber int) error {
	q := s.db.Querier(ctx)

	tag, err := q.Exec(ctx, database.ReleaseTableSQL, tableNumber)
	if err != nil {
		return fmt.Errorf("failed to release table %d: %w", tableNumber, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var status models.TableStatus
	var holder *uuid.UUID
	err = q.QueryRow(ctx, database.GetTableSQL, tableNumber).Scan(new(int), &status, &holder)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NotFound("table", tableNumber)
	}
	if err != nil {
		return fmt.Errorf("failed to read table %d: %w", tableNumber, err)
	}
	if holder != nil {
		return heldByOrder(tableNumber, *holder)
	}
	return nil
}

func (s *PostgresStore) ReleaseHeldBy(ctx context.Context, tableNumber int, orderID uuid.UUID) error {
	if _, err := s.db.Querier(ctx).Exec(ctx, database.ReleaseTableHeldBySQL, tableNumber, orderID); err != nil {
		return fmt.Errorf("failed to release table %d: %w", tableNumber, err)
	}
	return nil
}

func (s *PostgresStore) Occupy(ctx context.Context, tableNumber int) error {
	tag, err := s.db.Querier(ctx).Exec(ctx, database.OccupyTableSQL, tableNumber)
	if err != nil {
		return fmt.Errorf("failed to occupy table %d: %w", tableNumber, err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("table", tableNumber)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, count int) ([]models.Table, error) {
	rows, err := s.db.Querier(ctx).Query(ctx, database.ListTablesSQL, count)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []models.Table
	for rows.Next() {
		var t models.Table
		if err := rows.Scan(&t.TableNumber, &t.Status, &t.OrderID); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}
