package cart

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/memstore"
	"restaurant-pos/internal/models"
	"restaurant-pos/internal/services/inventory"
)

const adobo = "6f1c6c1e-8a63-4c1e-9b7a-1f0d0c6b2a01"

func newTestService() *Service {
	log := logger.NewWithWriter("test", io.Discard)
	ledger := inventory.NewLedger(inventory.NewMemoryStore(inventory.DefaultMenu()...), log)
	return NewService(NewMemoryStore(), ledger, log)
}

func TestAddItem(t *testing.T) {
	tests := []struct {
		name    string
		req     models.AddCartItemRequest
		wantErr error
	}{
		{name: "valid", req: models.AddCartItemRequest{MenuItemID: adobo, Quantity: 2}},
		{name: "more than stock", req: models.AddCartItemRequest{MenuItemID: adobo, Quantity: 41}, wantErr: models.ErrInsufficientStock},
		{name: "unknown item", req: models.AddCartItemRequest{MenuItemID: uuid.NewString(), Quantity: 1}, wantErr: models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService()
			_, err := s.AddItem(context.Background(), "cust-1", tt.req, "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddItem() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddItem_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  models.AddCartItemRequest
	}{
		{"bad id", models.AddCartItemRequest{MenuItemID: "adobo", Quantity: 1}},
		{"zero quantity", models.AddCartItemRequest{MenuItemID: adobo, Quantity: 0}},
		{"too many", models.AddCartItemRequest{MenuItemID: adobo, Quantity: 51}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestService().AddItem(context.Background(), "cust-1", tt.req, "")
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAddItem_MergesAndSnapshotsPrice(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	s.AddItem(ctx, "cust-1", models.AddCartItemRequest{MenuItemID: adobo, Quantity: 1}, "")
	cart, err := s.AddItem(ctx, "cust-1", models.AddCartItemRequest{MenuItemID: adobo, Quantity: 2}, "")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("items = %+v, want one line of 3", cart.Items)
	}
	if got := cart.Total().StringFixed(2); got != "360.00" {
		t.Errorf("total = %s, want 360.00", got)
	}
}

func TestRemoveItem(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	id := uuid.MustParse(adobo)

	if _, err := s.RemoveItem(ctx, "cust-1", id); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("RemoveItem on empty cart = %v, want not found", err)
	}

	s.AddItem(ctx, "cust-1", models.AddCartItemRequest{MenuItemID: adobo, Quantity: 1}, "")
	cart, err := s.RemoveItem(ctx, "cust-1", id)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("items = %+v, want empty", cart.Items)
	}
}

func TestClearCart_RolledBackWithUnitOfWork(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	cart, _ := s.AddItem(ctx, "cust-1", models.AddCartItemRequest{MenuItemID: adobo, Quantity: 1}, "")

	boom := errors.New("checkout failed")
	err := memstore.NewUnitOfWork().WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ClearCart(ctx, cart.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx() = %v", err)
	}

	after, _ := s.GetCart(ctx, "cust-1")
	if len(after.Items) != 1 {
		t.Errorf("items = %+v, want the line restored", after.Items)
	}
}

func TestHandler(t *testing.T) {
	router := mux.NewRouter()
	NewHandler(newTestService(), logger.NewWithWriter("test", io.Discard)).RegisterRoutes(router)

	withUser := func(req *http.Request) *http.Request {
		return req.WithContext(models.WithUser(req.Context(), models.CurrentUser{ID: "cust-1"}))
	}

	req := withUser(httptest.NewRequest(http.MethodPost, "/cart/items",
		strings.NewReader(`{"menu_item_id":"`+adobo+`","quantity":2}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /cart/items = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"total":"240.00"`) {
		t.Errorf("body = %s, want total 240.00", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET /cart without user = %d, want 401", rec.Code)
	}
}
