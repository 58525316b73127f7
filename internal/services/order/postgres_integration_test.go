//go:build integration

package order

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restaurant-pos/internal/config"
	"restaurant-pos/internal/database"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
	"restaurant-pos/internal/services/cart"
	"restaurant-pos/internal/services/inventory"
	"restaurant-pos/internal/services/notification"
	"restaurant-pos/internal/services/sequence"
	"restaurant-pos/internal/services/tables"
)

// Run with a scratch database:
//
//	POS_TEST_DB_NAME=pos_test go test -tags integration ./internal/services/order/
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	name := os.Getenv("POS_TEST_DB_NAME")
	if name == "" {
		t.Skip("POS_TEST_DB_NAME is not set")
	}

	cfg := config.Default()
	cfg.Database.Database = name
	cfg.Database.User = envOr("POS_TEST_DB_USER", "postgres")
	cfg.Database.Password = envOr("POS_TEST_DB_PASSWORD", "postgres")
	cfg.Database.Host = envOr("POS_TEST_DB_HOST", cfg.Database.Host)
	if port := os.Getenv("POS_TEST_DB_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			t.Fatalf("POS_TEST_DB_PORT: %v", err)
		}
		cfg.Database.Port = p
	}

	log := logger.NewWithWriter("test", io.Discard)
	db, err := database.New(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// seedItem adds a menu item with a unique name so runs never collide
func seedItem(t *testing.T, db *database.DB, price int64, stock int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Querier(context.Background()).Exec(context.Background(),
		`INSERT INTO menu_items (id, name, price, stock) VALUES ($1, $2, $3, $4)`,
		id, "item-"+id.String(), decimal.NewFromInt(price), stock)
	if err != nil {
		t.Fatalf("seed menu item: %v", err)
	}
	return id
}

func freeTable(t *testing.T, db *database.DB, n int) {
	t.Helper()
	_, err := db.Querier(context.Background()).Exec(context.Background(),
		`UPDATE dining_tables SET status = 'unoccupied', order_id = NULL WHERE table_number = $1`, n)
	if err != nil {
		t.Fatalf("free table %d: %v", n, err)
	}
}

type pgFixture struct {
	db        *database.DB
	svc       *Service
	ledger    *inventory.Ledger
	tables    *tables.Registry
	cartStore *cart.PostgresStore
}

func newPostgresFixture(t *testing.T) *pgFixture {
	t.Helper()
	db := openTestDB(t)
	log := logger.NewWithWriter("test", io.Discard)

	ledger := inventory.NewLedger(inventory.NewPostgresStore(db), log)
	registry := tables.NewRegistry(tables.NewPostgresStore(db), 25, log)
	if err := registry.EnsureTables(context.Background()); err != nil {
		t.Fatalf("EnsureTables: %v", err)
	}
	cartStore := cart.NewPostgresStore(db)

	svc := NewService(Deps{
		Tx:            db,
		Orders:        NewPostgresRepository(db),
		Carts:         cart.NewService(cartStore, ledger, log),
		Inventory:     ledger,
		Sequencer:     sequence.NewSequencer(sequence.NewPostgresStore(db)),
		Tables:        registry,
		Notifications: notification.NewService(notification.NewPostgresStore(db), &recordingPublisher{}, log),
		Printer:       &recordingPrinter{},
		Logger:        log,
	})

	return &pgFixture{db: db, svc: svc, ledger: ledger, tables: registry, cartStore: cartStore}
}

func (f *pgFixture) fill(t *testing.T, customerID string, itemID uuid.UUID, qty int) {
	t.Helper()
	err := f.cartStore.AddItem(context.Background(), customerID, models.CartLine{
		MenuItemID: itemID, Name: "item", Quantity: qty, Price: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
}

func (f *pgFixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	item, err := f.ledger.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return item.Stock
}

func TestPostgres_ReserveLastUnit(t *testing.T) {
	f := newPostgresFixture(t)
	id := seedItem(t, f.db, 100, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.ledger.Reserve(context.Background(), []models.StockLine{{MenuItemID: id, Quantity: 1}})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		var short *models.InsufficientStockError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &short):
			if short.Available != 0 {
				t.Errorf("available = %d, want 0", short.Available)
			}
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("%d reservations succeeded, want 1", ok)
	}
	if got := f.stock(t, id); got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}
}

func TestPostgres_ReleaseSettlesOnce(t *testing.T) {
	f := newPostgresFixture(t)
	id := seedItem(t, f.db, 100, 5)
	ctx := context.Background()
	lines := []models.StockLine{{MenuItemID: id, Quantity: 2}}

	if err := f.ledger.Reserve(ctx, lines); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	orderID := uuid.New()
	for i, want := range []bool{true, false} {
		applied, err := f.ledger.Release(ctx, orderID, lines)
		if err != nil {
			t.Fatalf("Release #%d: %v", i, err)
		}
		if applied != want {
			t.Errorf("Release #%d applied = %t, want %t", i, applied, want)
		}
	}
	if got := f.stock(t, id); got != 5 {
		t.Errorf("stock = %d, want 5", got)
	}
}

func TestPostgres_TableAcquire(t *testing.T) {
	f := newPostgresFixture(t)
	const table = 24
	freeTable(t, f.db, table)
	t.Cleanup(func() { freeTable(t, f.db, table) })
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.tables.Acquire(ctx, table, uuid.New())
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case !errors.Is(err, models.ErrAlreadyOccupied):
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("%d acquires succeeded, want 1", ok)
	}

	if err := f.tables.SetStatus(ctx, table, models.TableUnoccupied, "req"); !errors.Is(err, models.ErrAlreadyOccupied) {
		t.Errorf("SetStatus(unoccupied) on a held table = %v, want ErrAlreadyOccupied", err)
	}
}

func TestPostgres_SequenceDistinct(t *testing.T) {
	db := openTestDB(t)
	seq := sequence.NewSequencer(sequence.NewPostgresStore(db))

	const n = 10
	var wg sync.WaitGroup
	numbers := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := seq.NextOrderNumber(context.Background())
			if err != nil {
				t.Errorf("NextOrderNumber: %v", err)
				return
			}
			numbers <- num
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int64]bool)
	for num := range numbers {
		if seen[num] {
			t.Fatalf("order number %d handed out twice", num)
		}
		seen[num] = true
	}
}

func TestPostgres_CheckoutSameTable(t *testing.T) {
	f := newPostgresFixture(t)
	const table = 23
	freeTable(t, f.db, table)
	t.Cleanup(func() { freeTable(t, f.db, table) })
	id := seedItem(t, f.db, 100, 10)

	users := []models.CurrentUser{{ID: "cust-" + uuid.NewString()}, {ID: "cust-" + uuid.NewString()}}
	for _, u := range users {
		f.fill(t, u.ID, id, 2)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(users))
	for i, u := range users {
		wg.Add(1)
		go func(i int, u models.CurrentUser) {
			defer wg.Done()
			_, errs[i] = f.svc.Checkout(context.Background(), u, &models.CheckoutRequest{
				DineInOrTakeout: "dine in",
				TableNumber:     table,
			}, "req")
		}(i, u)
	}
	wg.Wait()

	var ok, occupied int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, models.ErrAlreadyOccupied):
			occupied++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || occupied != 1 {
		t.Fatalf("ok = %d, occupied = %d, want one each", ok, occupied)
	}
	if got := f.stock(t, id); got != 8 {
		t.Errorf("stock = %d, want 8", got)
	}
}

func TestPostgres_ApproveRejectRace(t *testing.T) {
	f := newPostgresFixture(t)
	id := seedItem(t, f.db, 100, 10)
	user := models.CurrentUser{ID: "cust-" + uuid.NewString()}
	f.fill(t, user.ID, id, 2)

	order, err := f.svc.Checkout(context.Background(), user, &models.CheckoutRequest{DineInOrTakeout: "takeout"}, "req")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, to := range []models.OrderStatus{models.StatusApproved, models.StatusRejected} {
		wg.Add(1)
		go func(i int, to models.OrderStatus) {
			defer wg.Done()
			_, errs[i] = f.svc.transition(context.Background(), order.ID, to, cashier, "req")
		}(i, to)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Fatalf("unexpected error: %v", err)
		}
		failed++
	}
	if failed != 1 {
		t.Fatalf("%d transitions failed, want exactly 1", failed)
	}

	stored, err := f.svc.Get(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	wantStock := 8
	if stored.Status == models.StatusRejected {
		wantStock = 10
	}
	if got := f.stock(t, id); got != wantStock {
		t.Errorf("stock = %d after %s, want %d", got, stored.Status, wantStock)
	}
}
