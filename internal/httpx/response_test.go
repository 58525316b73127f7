package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &models.ValidationError{Field: "table_number", Message: "bad"}, http.StatusBadRequest},
		{"empty cart", models.ErrEmptyCart, http.StatusBadRequest},
		{"not found", models.NotFound("order", 1), http.StatusNotFound},
		{"stock", &models.InsufficientStockError{Name: "Adobo"}, http.StatusConflict},
		{"occupied", fmt.Errorf("table 3: %w", models.ErrAlreadyOccupied), http.StatusConflict},
		{"transition", &models.InvalidTransitionError{From: models.StatusCompleted, To: models.StatusApproved}, http.StatusConflict},
		{"persistence", models.Persistence("insert order", errors.New("boom")), http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFailHidesInternalErrors(t *testing.T) {
	log := logger.NewWithWriter("test", io.Discard)

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"conflict keeps message", &models.InsufficientStockError{Name: "Adobo", Available: 1}, http.StatusConflict, "Available stock for Adobo is 1"},
		{"store failure", models.Persistence("insert order", errors.New("password authentication failed")), http.StatusServiceUnavailable, "Service temporarily unavailable"},
		{"unexpected", errors.New("nil map"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			req = req.WithContext(context.WithValue(req.Context(), requestIDKey{}, "req-1"))

			Fail(rec, req, log, "test_failed", tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"] != tt.wantMessage || body["request_id"] != "req-1" {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestLoggingSetsRequestID(t *testing.T) {
	var seen string
	handler := Logging(logger.NewWithWriter("test", io.Discard))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("request id %q, header %q", seen, rec.Header().Get("X-Request-ID"))
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}
