package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

// PostgresStore keeps notifications in the notifications table
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a postgres backed notification store
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, n *models.Notification) error {
	err := s.db.Querier(ctx).QueryRow(ctx, database.InsertNotificationSQL,
		n.ID, n.CustomerID, n.OrderID, n.OrderNumber, n.Status, n.Title, n.Message, n.Severity, n.Read,
	).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, customerID string, limit int) ([]models.Notification, error) {
	rows, err := s.db.Querier(ctx).Query(ctx, database.ListNotificationsSQL, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var list []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.CustomerID, &n.OrderID, &n.OrderNumber, &n.Status,
			&n.Title, &n.Message, &n.Severity, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func (s *PostgresStore) MarkRead(ctx context.Context, id uuid.UUID, customerID string) error {
	tag, err := s.db.Querier(ctx).Exec(ctx, database.MarkNotificationReadSQL, id, customerID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("notification", id)
	}
	return nil
}
