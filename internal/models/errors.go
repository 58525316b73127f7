package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadyOccupied   = errors.New("table is already occupied")
	ErrInvalidTransition = errors.New("invalid order transition")
	ErrNotFound          = errors.New("not found")
	ErrPersistence       = errors.New("persistence failure")
	ErrEmptyCart         = errors.New("no items in cart")
)

// InsufficientStockError names the item that could not be reserved and what was left of it
type InsufficientStockError struct {
	ItemID    uuid.UUID
	Name      string
	Available int
}

func (e *InsufficientStockError) Error() string {
	name := e.Name
	if name == "" {
		name = e.ItemID.String()
	}
	return fmt.Sprintf("Available stock for %s is %d", name, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidTransitionError is returned when an order is not in the status a transition starts from
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// PersistenceError wraps a failure of the underlying store
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Persistence wraps err as a store failure unless it already carries a domain error
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, domain := range []error{ErrInsufficientStock, ErrAlreadyOccupied, ErrInvalidTransition, ErrNotFound, ErrPersistence, ErrEmptyCart} {
		if errors.Is(err, domain) {
			return err
		}
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// NotFound builds an ErrNotFound for the named entity
func NotFound(entity string, id interface{}) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

// ValidationError reports a rejected request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
