package receipt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Sender hands a receipt to whatever drives the printer
type Sender interface {
	PublishReceipt(ctx context.Context, r models.Receipt) error
}

// Dispatcher prints receipts without making the caller wait. A failed send is retried once
// after a fixed delay, then dropped with an error log; it never fails the order. A send that
// got the first copy out is not retried.
type Dispatcher struct {
	sender     Sender
	retryDelay time.Duration
	timeout    time.Duration
	logger     *logger.Logger
	wg         sync.WaitGroup
}

// NewDispatcher creates a dispatcher sending through sender
func NewDispatcher(sender Sender, retryDelay time.Duration, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		sender:     sender,
		retryDelay: retryDelay,
		timeout:    10 * time.Second,
		logger:     log,
	}
}

// Print queues the receipt and returns immediately
func (d *Dispatcher) Print(ctx context.Context, r models.Receipt) {
	// the print outlives the request that asked for it
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.send(ctx, r)
	}()
}

func (d *Dispatcher) send(ctx context.Context, r models.Receipt) {
	fields := map[string]interface{}{
		"order_number":       r.OrderNumber,
		"transaction_number": r.TransactionNumber,
	}

	err := d.attempt(ctx, r)
	if err == nil {
		return
	}
	if errors.Is(err, ErrPartialPrint) {
		d.logger.Error("receipt_print_failed", "Receipt printed once, not retrying", "", err, fields)
		return
	}

	d.logger.Warn("receipt_print_retry", fmt.Sprintf("Printing failed, retrying in %v", d.retryDelay), "", fields)
	time.Sleep(d.retryDelay)

	if err = d.attempt(ctx, r); err != nil {
		d.logger.Error("receipt_print_failed", "Giving up on receipt", "", err, fields)
	}
}

func (d *Dispatcher) attempt(ctx context.Context, r models.Receipt) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.sender.PublishReceipt(ctx, r)
}

// Wait blocks until every queued print has finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
