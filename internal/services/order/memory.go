package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"restaurant-pos/internal/memstore"
	"restaurant-pos/internal/models"
)

// MemoryRepository keeps orders in process memory
type MemoryRepository struct {
	mu      sync.Mutex
	locks   memstore.RowLocks
	orders  map[uuid.UUID]*models.Order
	history map[uuid.UUID][]models.OrderStatusHistory
}

// NewMemoryRepository creates an empty memory order repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orders:  make(map[uuid.UUID]*models.Order),
		history: make(map[uuid.UUID][]models.OrderStatusHistory),
	}
}

func (r *MemoryRepository) Insert(ctx context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	r.orders[o.ID] = copyOrder(o)

	id := o.ID
	memstore.OnRollback(ctx, func() {
		r.mu.Lock()
		delete(r.orders, id)
		r.mu.Unlock()
	})
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, models.NotFound("order", id)
	}
	return copyOrder(o), nil
}

// GetForUpdate locks the order until the surrounding unit of work ends, then reads it
func (r *MemoryRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if err := r.locks.Lock(ctx, id); err != nil {
		return nil, models.Persistence("lock order", err)
	}
	return r.Get(ctx, id)
}

func (r *MemoryRepository) List(ctx context.Context, statuses []models.OrderStatus, limit int) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[models.OrderStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}

	var orders []models.Order
	for _, o := range r.orders {
		if len(want) == 0 || want[o.Status] {
			orders = append(orders, *copyOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderNumber > orders[j].OrderNumber })
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	before := o.UpdatedAt
	o.Status = to
	o.UpdatedAt = time.Now().UTC()

	memstore.OnRollback(ctx, func() {
		r.mu.Lock()
		if o, ok := r.orders[id]; ok {
			o.Status = from
			o.UpdatedAt = before
		}
		r.mu.Unlock()
	})
	return true, nil
}

func (r *MemoryRepository) UpdatePricing(ctx context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[o.ID]
	if !ok {
		return models.NotFound("order", o.ID)
	}
	before := copyOrder(stored)
	id := o.ID

	stored.TotalPrice = o.TotalPrice
	stored.TotalDiscount = o.TotalDiscount
	stored.DiscountEligible = o.DiscountEligible
	stored.DiscountApplied = o.DiscountApplied
	for i := range stored.Items {
		if i < len(o.Items) {
			stored.Items[i].DiscountedPrice = o.Items[i].DiscountedPrice
		}
	}
	stored.UpdatedAt = time.Now().UTC()

	memstore.OnRollback(ctx, func() {
		r.mu.Lock()
		if o, ok := r.orders[id]; ok {
			o.TotalPrice = before.TotalPrice
			o.TotalDiscount = before.TotalDiscount
			o.DiscountEligible = before.DiscountEligible
			o.DiscountApplied = before.DiscountApplied
			o.Items = before.Items
			o.UpdatedAt = before.UpdatedAt
		}
		r.mu.Unlock()
	})
	return nil
}

func (r *MemoryRepository) AppendHistory(ctx context.Context, orderID uuid.UUID, status models.OrderStatus, changedBy string, notes *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.history[orderID])
	r.history[orderID] = append(r.history[orderID], models.OrderStatusHistory{
		Status:    status,
		ChangedBy: changedBy,
		ChangedAt: time.Now().UTC(),
		Notes:     notes,
	})

	memstore.OnRollback(ctx, func() {
		r.mu.Lock()
		r.history[orderID] = r.history[orderID][:n]
		r.mu.Unlock()
	})
	return nil
}

func (r *MemoryRepository) History(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.OrderStatusHistory(nil), r.history[orderID]...), nil
}

func copyOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem(nil), o.Items...)
	return &c
}
