// Package memstore gives the in-memory stores the same all-or-nothing behaviour the
// postgres stores get from a transaction: stores register undo steps on the journal carried
// by ctx, and a failed unit of work replays them in reverse order.
package memstore

import (
	"context"
	"sync"
)

type journalKey struct{}

type journal struct {
	mu       sync.Mutex
	undos    []func()
	releases []func()
	held     map[rowKey]bool
}

func (j *journal) record(undo func()) {
	j.mu.Lock()
	j.undos = append(j.undos, undo)
	j.mu.Unlock()
}

func (j *journal) rollback() {
	j.mu.Lock()
	undos := j.undos
	j.undos = nil
	j.mu.Unlock()

	for i := len(undos) - 1; i >= 0; i-- {
		undos[i]()
	}
}

// release hands back every row lock taken by the unit of work
func (j *journal) release() {
	j.mu.Lock()
	releases := j.releases
	j.releases = nil
	j.held = nil
	j.mu.Unlock()

	for _, fn := range releases {
		fn()
	}
}

// hold records that the unit of work is taking key and reports false when it already has it
func (j *journal) hold(key rowKey) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.held[key] {
		return false
	}
	if j.held == nil {
		j.held = make(map[rowKey]bool)
	}
	j.held[key] = true
	return true
}

func (j *journal) drop(key rowKey) {
	j.mu.Lock()
	delete(j.held, key)
	j.mu.Unlock()
}

func (j *journal) onRelease(fn func()) {
	j.mu.Lock()
	j.releases = append(j.releases, fn)
	j.mu.Unlock()
}

// UnitOfWork runs functions against the memory stores as one unit
type UnitOfWork struct{}

// NewUnitOfWork creates a unit of work for memory stores
func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{}
}

// WithinTx runs fn and undoes every recorded step if it fails. Row locks taken inside fn
// are held until it returns, after any undo has run.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(journalKey{}).(*journal); ok {
		return fn(ctx)
	}

	j := &journal{}
	defer j.release()

	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		j.rollback()
		return err
	}
	return nil
}

// OnRollback registers undo with the unit of work running in ctx, if any
func OnRollback(ctx context.Context, undo func()) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		j.record(undo)
	}
}

type rowKey struct {
	locks *RowLocks
	key   any
}

// RowLocks gives memory stores the row locking of SELECT ... FOR UPDATE: a key locked inside
// a unit of work stays locked until that unit of work ends. The zero value is ready to use.
type RowLocks struct {
	mu   sync.Mutex
	rows map[any]chan struct{}
}

func (l *RowLocks) row(key any) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rows == nil {
		l.rows = make(map[any]chan struct{})
	}
	sem, ok := l.rows[key]
	if !ok {
		sem = make(chan struct{}, 1)
		l.rows[key] = sem
	}
	return sem
}

// Lock waits until key is free or ctx is done. Outside a unit of work, and for a key the
// unit of work already holds, it returns at once.
func (l *RowLocks) Lock(ctx context.Context, key any) error {
	j, ok := ctx.Value(journalKey{}).(*journal)
	if !ok {
		return nil
	}
	rk := rowKey{locks: l, key: key}
	if !j.hold(rk) {
		return nil
	}

	sem := l.row(key)
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		j.drop(rk)
		return ctx.Err()
	}
	j.onRelease(func() { <-sem })
	return nil
}
