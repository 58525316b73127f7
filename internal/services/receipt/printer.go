package receipt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/messaging"
	"restaurant-pos/internal/models"
)

// Consumer feeds print jobs from the receipts queue
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// ErrPartialPrint means the first copy is already on paper. The job must not be printed
// again, so it is never retried or requeued.
var ErrPartialPrint = fmt.Errorf("receipt partially printed: %w", messaging.ErrDiscard)

// Printer writes every receipt twice, one copy for the customer and one for the kitchen
type Printer struct {
	mu        sync.Mutex
	formatter *Formatter
	device    io.Writer
	passDelay time.Duration
	logger    *logger.Logger
}

// NewPrinter creates a printer writing to device
func NewPrinter(formatter *Formatter, device io.Writer, passDelay time.Duration, log *logger.Logger) *Printer {
	return &Printer{
		formatter: formatter,
		device:    device,
		passDelay: passDelay,
		logger:    log,
	}
}

// Print writes both copies, waiting passDelay between them
func (p *Printer) Print(ctx context.Context, r models.Receipt) error {
	text := p.formatter.Format(r)

	if err := p.write(text); err != nil {
		return fmt.Errorf("failed to print first copy: %w", err)
	}
	p.logger.Debug("receipt_printed", "First copy printed", "", map[string]interface{}{
		"order_number": r.OrderNumber,
	})

	select {
	case <-time.After(p.passDelay):
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrPartialPrint, ctx.Err())
	}

	if err := p.write(text); err != nil {
		return fmt.Errorf("%w: failed to print second copy: %w", ErrPartialPrint, err)
	}
	p.logger.Info("receipt_printed", fmt.Sprintf("Printed receipt %s", r.TransactionNumber), "", map[string]interface{}{
		"order_number":       r.OrderNumber,
		"transaction_number": r.TransactionNumber,
	})
	return nil
}

// PublishReceipt prints in process, for running without a broker
func (p *Printer) PublishReceipt(ctx context.Context, r models.Receipt) error {
	err := p.Print(ctx, r)
	if errors.Is(err, ErrPartialPrint) {
		p.logger.Error("receipt_print_partial", fmt.Sprintf("Receipt %s printed once, dropping job", r.TransactionNumber), "", err, map[string]interface{}{
			"order_number": r.OrderNumber,
		})
	}
	return err
}

func (p *Printer) write(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := io.WriteString(p.device, text)
	return err
}

// Start prints jobs from consumer until ctx is cancelled
func (p *Printer) Start(ctx context.Context, consumer Consumer) error {
	requestID := logger.GenerateRequestID()
	p.logger.Info("service_started", "Receipt printer started", requestID, nil)

	err := consumer.StartConsuming(ctx, p.handleJob)

	p.logger.Info("graceful_shutdown", "Stopping receipt printer", requestID, nil)
	consumer.Close()

	if err != nil && ctx.Err() == nil {
		p.logger.Error("consumer_failed", "Receipt consumer failed", requestID, err, nil)
		return err
	}
	return nil
}

func (p *Printer) handleJob(ctx context.Context, body []byte) error {
	var r models.Receipt
	if err := messaging.ParseMessage(body, &r); err != nil {
		p.logger.Error("message_parsing_failed", "Failed to parse receipt message", "", err, nil)
		return err
	}
	err := p.Print(ctx, r)
	if errors.Is(err, ErrPartialPrint) {
		p.logger.Error("receipt_print_partial", fmt.Sprintf("Receipt %s printed once, dropping job", r.TransactionNumber), "", err, map[string]interface{}{
			"order_number": r.OrderNumber,
		})
	}
	return err
}
