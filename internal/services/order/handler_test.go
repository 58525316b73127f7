package order

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

func TestHandler(t *testing.T) {
	f := newFixture(t, 5)
	router := mux.NewRouter()
	NewHandler(f.svc, logger.NewWithWriter("test", io.Discard)).RegisterRoutes(router)

	send := func(method, target, body string, user *models.CurrentUser) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, reader)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if user != nil {
			req = req.WithContext(models.WithUser(req.Context(), *user))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	f.fill(t, customer.ID, 2, 0)
	rec := send(http.MethodPost, "/checkout", `{"dine_in_or_takeout":"dine in","table_number":4}`, &customer)
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout status = %d, body = %s", rec.Code, rec.Body)
	}
	var order models.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	orderURL := fmt.Sprintf("/orders/%s", order.ID)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		user   *models.CurrentUser
		want   int
	}{
		{"checkout without user", http.MethodPost, "/checkout", `{"dine_in_or_takeout":"takeout"}`, nil, http.StatusUnauthorized},
		{"checkout empty cart", http.MethodPost, "/checkout", `{"dine_in_or_takeout":"takeout"}`, &customer, http.StatusBadRequest},
		{"checkout unknown field", http.MethodPost, "/checkout", `{"dine_in_or_takeout":"takeout","tip":5}`, &customer, http.StatusBadRequest},
		{"get order", http.MethodGet, orderURL, "", nil, http.StatusOK},
		{"get bad id", http.MethodGet, "/orders/nope", "", nil, http.StatusBadRequest},
		{"get unknown order", http.MethodGet, "/orders/6f1c6c1e-0000-4c1e-9b7a-1f0d0c6b2a01", "", nil, http.StatusNotFound},
		{"list unknown status", http.MethodGet, "/orders?status=cooking", "", nil, http.StatusBadRequest},
		{"list bad limit", http.MethodGet, "/orders?limit=many", "", nil, http.StatusBadRequest},
		{"discount missing field", http.MethodPut, orderURL + "/discount", `{}`, &cashier, http.StatusBadRequest},
		{"discount", http.MethodPut, orderURL + "/discount", `{"eligible":true}`, &cashier, http.StatusOK},
		{"complete pending", http.MethodPost, orderURL + "/complete", "", &cashier, http.StatusConflict},
		{"approve", http.MethodPost, orderURL + "/approve", "", &cashier, http.StatusOK},
		{"approve again", http.MethodPost, orderURL + "/approve", "", &cashier, http.StatusOK},
		{"reject approved", http.MethodPost, orderURL + "/reject", "", &cashier, http.StatusConflict},
		{"complete", http.MethodPost, orderURL + "/complete", "", &cashier, http.StatusOK},
		{"history", http.MethodGet, orderURL + "/history", "", nil, http.StatusOK},
		{"list completed", http.MethodGet, "/orders?status=completed&limit=10", "", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(tt.method, tt.target, tt.body, tt.user)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", rec.Code, tt.want, rec.Body)
			}
		})
	}

	rec = send(http.MethodGet, orderURL+"/history", "", nil)
	var history []models.OrderStatusHistory
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	// pending, discount change, approved, completed
	if len(history) != 4 {
		t.Errorf("history has %d entries, want 4", len(history))
	}
}
