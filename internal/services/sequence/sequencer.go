package sequence

import (
	"context"
	"fmt"
	"sync/atomic"

	"restaurant-pos/internal/database"
	"restaurant-pos/internal/models"
)

// FirstOrderNumber is the number given to the first order ever placed
const FirstOrderNumber int64 = 1000

// Store hands out order numbers. Every call returns a value no earlier call returned.
type Store interface {
	Next(ctx context.Context) (int64, error)
}

// Sequencer assigns order and transaction numbers
type Sequencer struct {
	store Store
}

// NewSequencer creates a sequencer over store
func NewSequencer(store Store) *Sequencer {
	return &Sequencer{store: store}
}

// NextOrderNumber takes the next number from the counter
func (s *Sequencer) NextOrderNumber(ctx context.Context) (int64, error) {
	n, err := s.store.Next(ctx)
	if err != nil {
		return 0, models.Persistence("next order number", err)
	}
	return n, nil
}

// TransactionNumber derives the printed transaction number of an order
func TransactionNumber(orderNumber int64) string {
	return fmt.Sprintf("TXN-%08d", orderNumber)
}

// PostgresStore increments the single order_counter row. Called inside the checkout
// transaction, a rolled back checkout gives its number back.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a postgres backed counter
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Next(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.Querier(ctx).QueryRow(ctx, database.NextOrderNumberSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to increment order counter: %w", err)
	}
	return n, nil
}

// MemoryStore counts in process memory. Numbers are never handed back.
type MemoryStore struct {
	last atomic.Int64
}

// NewMemoryStore creates a counter whose first value is FirstOrderNumber
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.last.Store(FirstOrderNumber - 1)
	return s
}

func (s *MemoryStore) Next(ctx context.Context) (int64, error) {
	return s.last.Add(1), nil
}
