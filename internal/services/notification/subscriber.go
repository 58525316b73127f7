package notification

import (
	"context"
	"fmt"
	"io"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/messaging"
	"restaurant-pos/internal/models"
)

// Consumer feeds messages from the notifications queue to a handler
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber prints order notifications as they are published
type Subscriber struct {
	consumer Consumer
	out      io.Writer
	logger   *logger.Logger
}

// NewSubscriber creates a new notification subscriber writing to out
func NewSubscriber(consumer Consumer, out io.Writer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		out:      out,
		logger:   log,
	}
}

// Start consumes until ctx is cancelled
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.handleNotification)

	s.logger.Info("graceful_shutdown", "Stopping notification subscriber", requestID, nil)
	s.consumer.Close()

	if err != nil && ctx.Err() == nil {
		s.logger.Error("consumer_failed", "Notification consumer failed", requestID, err, nil)
		return err
	}
	return nil
}

// handleNotification processes incoming order notifications
func (s *Subscriber) handleNotification(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var n models.Notification
	if err := messaging.ParseMessage(body, &n); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse notification message", requestID, err, nil)
		return err
	}

	if _, err := fmt.Fprintln(s.out, formatNotification(&n)); err != nil {
		return fmt.Errorf("failed to display notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Notification displayed to user", requestID, map[string]interface{}{
		"customer_id":  n.CustomerID,
		"order_number": n.OrderNumber,
		"status":       n.Status,
		"severity":     n.Severity,
	})
	return nil
}

// formatNotification creates a human-readable notification line
func formatNotification(n *models.Notification) string {
	timestamp := n.CreatedAt.Local().Format("2006-01-02 15:04:05")

	var icon string
	switch n.Severity {
	case models.SeveritySuccess:
		icon = "✅"
	case models.SeverityWarning:
		icon = "⚠️"
	case models.SeverityError:
		icon = "❌"
	default:
		icon = "📋"
	}

	return fmt.Sprintf("%s [%s] %s: order #%d for %s. %s.",
		icon, timestamp, n.Title, n.OrderNumber, n.CustomerID, n.Message)
}
