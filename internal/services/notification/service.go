package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Store keeps the notifications attached to customer profiles
type Store interface {
	Insert(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, customerID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, customerID string) error
}

// Publisher pushes a stored notification to live subscribers
type Publisher interface {
	PublishNotification(ctx context.Context, n models.Notification) error
}

// LogPublisher stands in for the broker when running without one
type LogPublisher struct {
	Logger *logger.Logger
}

func (p LogPublisher) PublishNotification(ctx context.Context, n models.Notification) error {
	p.Logger.Info("notification_published", n.Message, "", map[string]interface{}{
		"customer_id":  n.CustomerID,
		"order_number": n.OrderNumber,
		"severity":     n.Severity,
	})
	return nil
}

var templates = map[models.OrderStatus]struct {
	message  string
	severity models.Severity
}{
	models.StatusApproved:  {"Your order has been approved", models.SeveritySuccess},
	models.StatusRejected:  {"Your order has been rejected", models.SeverityWarning},
	models.StatusCompleted: {"Your order has been completed", models.SeveritySuccess},
	models.StatusCancelled: {"Your order has been cancelled", models.SeverityError},
}

// Service records order notifications and fans them out
type Service struct {
	store     Store
	publisher Publisher
	logger    *logger.Logger
}

// NewService creates a new notification service
func NewService(store Store, publisher Publisher, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    log,
	}
}

// Build returns the unsaved notification the customer gets when order reaches status
func Build(order *models.Order, status models.OrderStatus) (*models.Notification, error) {
	tmpl, ok := templates[status]
	if !ok {
		return nil, fmt.Errorf("no notification for status %s", status)
	}
	return &models.Notification{
		ID:          uuid.New(),
		CustomerID:  order.CustomerID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      status,
		Title:       models.NotificationTitle,
		Message:     tmpl.message,
		Severity:    tmpl.severity,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Record stores the notification for a transition. Called with the transition's ctx it is
// part of the same transaction.
func (s *Service) Record(ctx context.Context, order *models.Order, status models.OrderStatus) (*models.Notification, error) {
	n, err := Build(order, status)
	if err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return nil, models.Persistence("insert notification", err)
	}
	return n, nil
}

// Publish delivers a committed notification. Failures are logged only, the customer still
// finds the notification on their profile.
func (s *Service) Publish(ctx context.Context, n *models.Notification, requestID string) {
	if err := s.publisher.PublishNotification(ctx, *n); err != nil {
		s.logger.Error("notification_publish_failed", "Failed to publish notification", requestID, err, map[string]interface{}{
			"notification_id": n.ID,
			"order_number":    n.OrderNumber,
		})
	}
}

// List returns the customer's latest notifications
func (s *Service) List(ctx context.Context, customerID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	list, err := s.store.List(ctx, customerID, limit)
	if err != nil {
		return nil, models.Persistence("list notifications", err)
	}
	return list, nil
}

// MarkRead flags one of the customer's notifications as seen
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID, customerID string) error {
	if err := s.store.MarkRead(ctx, id, customerID); err != nil {
		return models.Persistence("mark notification read", err)
	}
	return nil
}
