package tables

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/memstore"
	"restaurant-pos/internal/models"
)

func newTestRegistry(t *testing.T, count int) *Registry {
	t.Helper()
	r := NewRegistry(NewMemoryStore(), count, logger.NewWithWriter("test", io.Discard))
	if err := r.EnsureTables(context.Background()); err != nil {
		t.Fatalf("EnsureTables: %v", err)
	}
	return r
}

func tableStatus(t *testing.T, r *Registry, n int) models.Table {
	t.Helper()
	tables, err := r.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, tbl := range tables {
		if tbl.TableNumber == n {
			return tbl
		}
	}
	t.Fatalf("table %d not listed", n)
	return models.Table{}
}

func TestAcquire(t *testing.T) {
	tests := []struct {
		name    string
		table   int
		prepare func(r *Registry)
		wantErr error
	}{
		{name: "free table", table: 3},
		{name: "virtual table", table: 0},
		{
			name:  "held table",
			table: 3,
			prepare: func(r *Registry) {
				r.Acquire(context.Background(), 3, uuid.New())
			},
			wantErr: models.ErrAlreadyOccupied,
		},
		{name: "beyond the floor", table: 6, wantErr: models.ErrNotFound},
		{name: "negative", table: -1, wantErr: models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(t, 5)
			if tt.prepare != nil {
				tt.prepare(r)
			}
			err := r.Acquire(context.Background(), tt.table, uuid.New())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Acquire(%d) error = %v, want %v", tt.table, err, tt.wantErr)
			}
		})
	}
}

func TestAcquire_VirtualTableNeverOccupied(t *testing.T) {
	r := newTestRegistry(t, 5)
	for i := 0; i < 3; i++ {
		if err := r.Acquire(context.Background(), models.NoTable, uuid.New()); err != nil {
			t.Fatalf("Acquire(0) #%d: %v", i, err)
		}
	}
}

func TestAcquire_ConcurrentExactlyOneWins(t *testing.T) {
	r := newTestRegistry(t, 25)

	const callers = 20
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- r.Acquire(context.Background(), 7, uuid.New())
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case !errors.Is(err, models.ErrAlreadyOccupied):
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want 1", wins)
	}
}

func TestRelease(t *testing.T) {
	r := newTestRegistry(t, 5)
	ctx := context.Background()

	if err := r.SetStatus(ctx, 2, models.TableOccupied, "req"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := r.Release(ctx, 2); err != nil {
			t.Fatalf("Release #%d: %v", i, err)
		}
	}
	if got := tableStatus(t, r, 2); got.Status != models.TableUnoccupied || got.OrderID != nil {
		t.Errorf("table 2 = %+v, want unoccupied with no order", got)
	}
	if err := r.Release(ctx, 0); err != nil {
		t.Errorf("Release(0) = %v, want nil", err)
	}
	if err := r.Acquire(ctx, 2, uuid.New()); err != nil {
		t.Errorf("Acquire after release: %v", err)
	}
}

func TestReleaseHeldBy(t *testing.T) {
	r := newTestRegistry(t, 5)
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()

	if err := r.Acquire(ctx, 4, first); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	// the first order finished and the table went to another party
	if err := r.ReleaseHeldBy(ctx, 4, first); err != nil {
		t.Fatalf("ReleaseHeldBy: %v", err)
	}
	if err := r.Acquire(ctx, 4, second); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if err := r.ReleaseHeldBy(ctx, 4, first); err != nil {
		t.Fatalf("ReleaseHeldBy: %v", err)
	}
	if got := tableStatus(t, r, 4); got.Status != models.TableOccupied || *got.OrderID != second {
		t.Fatalf("table 4 = %+v, want still held by second order", got)
	}

	if err := r.ReleaseHeldBy(ctx, 4, second); err != nil {
		t.Fatalf("ReleaseHeldBy: %v", err)
	}
	if got := tableStatus(t, r, 4); got.Status != models.TableUnoccupied {
		t.Errorf("table 4 = %+v, want unoccupied", got)
	}
}

func TestSetStatus_KeepsTableHeldByOrder(t *testing.T) {
	r := newTestRegistry(t, 5)
	ctx := context.Background()
	holder := uuid.New()

	if err := r.Acquire(ctx, 3, holder); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	err := r.SetStatus(ctx, 3, models.TableUnoccupied, "req")
	if !errors.Is(err, models.ErrAlreadyOccupied) {
		t.Fatalf("SetStatus(unoccupied) = %v, want ErrAlreadyOccupied", err)
	}
	if got := tableStatus(t, r, 3); got.Status != models.TableOccupied || got.OrderID == nil || *got.OrderID != holder {
		t.Fatalf("table 3 = %+v, want still held by its order", got)
	}
	if err := r.Acquire(ctx, 3, uuid.New()); !errors.Is(err, models.ErrAlreadyOccupied) {
		t.Errorf("second Acquire = %v, want ErrAlreadyOccupied", err)
	}

	if err := r.ReleaseHeldBy(ctx, 3, holder); err != nil {
		t.Fatalf("ReleaseHeldBy: %v", err)
	}
	if err := r.SetStatus(ctx, 3, models.TableUnoccupied, "req"); err != nil {
		t.Errorf("SetStatus on a free table: %v", err)
	}
}

func TestAcquire_RolledBackWithUnitOfWork(t *testing.T) {
	r := newTestRegistry(t, 5)
	boom := errors.New("insert failed")

	err := memstore.NewUnitOfWork().WithinTx(context.Background(), func(ctx context.Context) error {
		if err := r.Acquire(ctx, 1, uuid.New()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx() error = %v, want %v", err, boom)
	}
	if got := tableStatus(t, r, 1); got.Status != models.TableUnoccupied {
		t.Errorf("table 1 = %+v, want unoccupied after rollback", got)
	}
}

func TestHandler_SetTableStatus(t *testing.T) {
	r := newTestRegistry(t, 5)
	if err := r.Acquire(context.Background(), 4, uuid.New()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	router := mux.NewRouter()
	NewHandler(r, logger.NewWithWriter("test", io.Discard)).RegisterRoutes(router)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"occupy", "/tables/3", `{"status":"occupied"}`, http.StatusOK},
		{"free", "/tables/3", `{"status":"unoccupied"}`, http.StatusOK},
		{"free table held by an order", "/tables/4", `{"status":"unoccupied"}`, http.StatusConflict},
		{"unknown status", "/tables/3", `{"status":"reserved"}`, http.StatusBadRequest},
		{"out of range", "/tables/30", `{"status":"occupied"}`, http.StatusNotFound},
		{"bad body", "/tables/3", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}
