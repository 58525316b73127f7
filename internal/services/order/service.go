package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
	"restaurant-pos/internal/services/cart"
	"restaurant-pos/internal/services/discount"
	"restaurant-pos/internal/services/inventory"
	"restaurant-pos/internal/services/notification"
	"restaurant-pos/internal/services/sequence"
	"restaurant-pos/internal/services/tables"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Printer prints receipts in the background
type Printer interface {
	Print(ctx context.Context, r models.Receipt)
}

// Deps are the collaborators of the order lifecycle
type Deps struct {
	Tx            TxRunner
	Orders        Repository
	Carts         *cart.Service
	Inventory     *inventory.Ledger
	Sequencer     *sequence.Sequencer
	Tables        *tables.Registry
	Notifications *notification.Service
	Printer       Printer
	Logger        *logger.Logger
}

// Service drives orders from checkout to their final status
type Service struct {
	tx            TxRunner
	orders        Repository
	carts         *cart.Service
	inventory     *inventory.Ledger
	sequencer     *sequence.Sequencer
	tables        *tables.Registry
	notifications *notification.Service
	printer       Printer
	logger        *logger.Logger
}

// NewService creates a new order service
func NewService(d Deps) *Service {
	return &Service{
		tx:            d.Tx,
		orders:        d.Orders,
		carts:         d.Carts,
		inventory:     d.Inventory,
		sequencer:     d.Sequencer,
		tables:        d.Tables,
		notifications: d.Notifications,
		printer:       d.Printer,
		logger:        d.Logger,
	}
}

// Checkout turns the caller's cart into a pending order. Stock, table, order number,
// the order rows and the emptied cart are committed together or not at all.
func (s *Service) Checkout(ctx context.Context, user models.CurrentUser, req *models.CheckoutRequest, requestID string) (*models.Order, error) {
	co, err := validateCheckoutRequest(req)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:               uuid.New(),
		CustomerID:       user.ID,
		CashierName:      user.DisplayName,
		Status:           models.StatusPending,
		TableNumber:      co.table,
		DineInOrTakeout:  co.dining,
		DiscountEligible: co.eligible,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.carts.GetCart(ctx, user.ID)
		if err != nil {
			return err
		}
		if err := validateCart(c); err != nil {
			return err
		}

		order.Items = make([]models.OrderItem, len(c.Items))
		for i, line := range c.Items {
			order.Items[i] = models.OrderItem{
				MenuItemID: line.MenuItemID,
				Name:       line.Name,
				Quantity:   line.Quantity,
				Price:      line.Price,
				ImageURL:   line.ImageURL,
			}
		}
		priced := discount.Apply(order.Items, false)
		order.Items = priced.Items
		order.TotalPrice = priced.TotalPrice
		order.TotalDiscount = priced.TotalDiscount

		if err := s.inventory.Reserve(ctx, order.StockLines()); err != nil {
			return err
		}

		if order.HoldsTable() {
			if err := s.tables.Acquire(ctx, order.TableNumber, order.ID); err != nil {
				return err
			}
		}

		number, err := s.sequencer.NextOrderNumber(ctx)
		if err != nil {
			return err
		}
		order.OrderNumber = number
		order.TransactionNumber = sequence.TransactionNumber(number)

		if err := s.orders.Insert(ctx, order); err != nil {
			return models.Persistence("insert order", err)
		}
		if err := s.orders.AppendHistory(ctx, order.ID, models.StatusPending, user.ID, nil); err != nil {
			return models.Persistence("log order status", err)
		}

		return s.carts.ClearCart(ctx, c.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_created", fmt.Sprintf("Order %d created", order.OrderNumber), requestID, map[string]interface{}{
		"order_id":           order.ID,
		"order_number":       order.OrderNumber,
		"transaction_number": order.TransactionNumber,
		"customer_id":        order.CustomerID,
		"table_number":       order.TableNumber,
		"dine_in_or_takeout": order.DineInOrTakeout,
		"total_price":        order.TotalPrice.StringFixed(2),
	})

	s.printer.Print(ctx, models.ReceiptFromOrder(order))
	return order, nil
}

// Approve accepts a pending order and fixes its prices
func (s *Service) Approve(ctx context.Context, id uuid.UUID, user models.CurrentUser, requestID string) (*models.Order, error) {
	return s.transition(ctx, id, models.StatusApproved, user, requestID)
}

// Reject turns down a pending order and gives its stock and table back
func (s *Service) Reject(ctx context.Context, id uuid.UUID, user models.CurrentUser, requestID string) (*models.Order, error) {
	return s.transition(ctx, id, models.StatusRejected, user, requestID)
}

// Complete records an approved order as sold
func (s *Service) Complete(ctx context.Context, id uuid.UUID, user models.CurrentUser, requestID string) (*models.Order, error) {
	return s.transition(ctx, id, models.StatusCompleted, user, requestID)
}

// Cancel calls off an approved order and gives its stock and table back
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, user models.CurrentUser, requestID string) (*models.Order, error) {
	return s.transition(ctx, id, models.StatusCancelled, user, requestID)
}

// transition moves the order to status to. The status swap and every side effect stored in
// the database share one transaction; publishing and printing happen after it commits.
// Repeating a transition that already happened returns the order unchanged.
func (s *Service) transition(ctx context.Context, id uuid.UUID, to models.OrderStatus, user models.CurrentUser, requestID string) (*models.Order, error) {
	var (
		order   *models.Order
		note    *models.Notification
		applied bool
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.GetForUpdate(ctx, id)
		if err != nil {
			return models.Persistence("get order", err)
		}

		from := order.Status
		if from == to {
			return nil
		}
		if !models.CanTransition(from, to) {
			return &models.InvalidTransitionError{From: from, To: to}
		}

		swapped, err := s.orders.UpdateStatus(ctx, id, from, to)
		if err != nil {
			return models.Persistence("update order status", err)
		}
		if !swapped {
			current, err := s.orders.Get(ctx, id)
			if err != nil {
				return models.Persistence("get order", err)
			}
			if current.Status == to {
				order = current
				return nil
			}
			return &models.InvalidTransitionError{From: current.Status, To: to}
		}
		order.Status = to

		if err := s.applySideEffects(ctx, order); err != nil {
			return err
		}

		if note, err = s.notifications.Record(ctx, order, to); err != nil {
			return err
		}
		if err := s.orders.AppendHistory(ctx, id, to, user.ID, nil); err != nil {
			return models.Persistence("log order status", err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !applied {
		s.logger.Debug("order_transition_skipped", fmt.Sprintf("Order %d is already %s", order.OrderNumber, to), requestID, map[string]interface{}{
			"order_id": order.ID,
		})
		return order, nil
	}

	s.logger.Info("order_status_changed", fmt.Sprintf("Order %d is now %s", order.OrderNumber, to), requestID, map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       to,
		"changed_by":   user.ID,
	})

	s.notifications.Publish(ctx, note, requestID)
	if to == models.StatusApproved {
		receipt := models.ReceiptFromOrder(order)
		if user.DisplayName != "" {
			receipt.CashierName = user.DisplayName
		}
		s.printer.Print(ctx, receipt)
	}
	return order, nil
}

func (s *Service) applySideEffects(ctx context.Context, order *models.Order) error {
	switch order.Status {
	case models.StatusApproved:
		if order.DiscountApplied {
			return nil
		}
		return s.reprice(ctx, order, order.DiscountEligible)

	case models.StatusRejected, models.StatusCancelled:
		if order.HoldsTable() {
			if err := s.tables.ReleaseHeldBy(ctx, order.TableNumber, order.ID); err != nil {
				return err
			}
		}
		_, err := s.inventory.Release(ctx, order.ID, order.StockLines())
		return err

	case models.StatusCompleted:
		if _, err := s.inventory.CommitSale(ctx, order.ID, order.StockLines()); err != nil {
			return err
		}
		if order.HoldsTable() {
			return s.tables.ReleaseHeldBy(ctx, order.TableNumber, order.ID)
		}
	}
	return nil
}

// reprice recomputes the order from the original unit prices
func (s *Service) reprice(ctx context.Context, order *models.Order, eligible bool) error {
	priced := discount.Apply(order.Items, eligible)
	order.Items = priced.Items
	order.TotalPrice = priced.TotalPrice
	order.TotalDiscount = priced.TotalDiscount
	order.DiscountEligible = eligible
	order.DiscountApplied = true

	if err := s.orders.UpdatePricing(ctx, order); err != nil {
		return models.Persistence("update order pricing", err)
	}
	return nil
}

// SetDiscountEligibility marks a pending order as senior/PWD or not and reprices it
func (s *Service) SetDiscountEligibility(ctx context.Context, id uuid.UUID, eligible bool, user models.CurrentUser, requestID string) (*models.Order, error) {
	var order *models.Order

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.GetForUpdate(ctx, id)
		if err != nil {
			return models.Persistence("get order", err)
		}
		if order.Status != models.StatusPending {
			return fmt.Errorf("order %d is %s, the discount can only change while pending: %w",
				order.OrderNumber, order.Status, models.ErrInvalidTransition)
		}

		if err := s.reprice(ctx, order, eligible); err != nil {
			return err
		}

		notes := fmt.Sprintf("discount eligibility set to %t", eligible)
		if err := s.orders.AppendHistory(ctx, id, order.Status, user.ID, &notes); err != nil {
			return models.Persistence("log order status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_discount_set", fmt.Sprintf("Order %d discount eligibility set to %t", order.OrderNumber, eligible), requestID, map[string]interface{}{
		"order_id":       order.ID,
		"total_price":    order.TotalPrice.StringFixed(2),
		"total_discount": order.TotalDiscount.StringFixed(2),
	})
	return order, nil
}

// Get returns one order
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, models.Persistence("get order", err)
	}
	return order, nil
}

// List returns the newest orders in any of statuses, or in any status when none are given
func (s *Service) List(ctx context.Context, statuses []models.OrderStatus, limit int) ([]models.Order, error) {
	for _, st := range statuses {
		if !st.Valid() {
			return nil, &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", st)}
		}
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	orders, err := s.orders.List(ctx, statuses, limit)
	if err != nil {
		return nil, models.Persistence("list orders", err)
	}
	return orders, nil
}

// History returns the status log of an order
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]models.OrderStatusHistory, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	history, err := s.orders.History(ctx, id)
	if err != nil {
		return nil, models.Persistence("get order history", err)
	}
	return history, nil
}
