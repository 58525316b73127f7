package order

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"restaurant-pos/internal/httpx"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Handler handles HTTP requests for the order service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes mounts the checkout and order endpoints on r
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/checkout", h.Checkout).Methods(http.MethodPost)
	r.HandleFunc("/orders", h.ListOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", h.GetOrder).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}/history", h.GetHistory).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}/{action:approve|reject|complete|cancel}", h.Transition).Methods(http.MethodPost)
	r.HandleFunc("/orders/{id}/discount", h.SetDiscount).Methods(http.MethodPut)
}

type discountRequest struct {
	Eligible *bool `json:"eligible"`
}

// Checkout handles POST /checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}
	requestID := httpx.RequestID(r.Context())

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		httpx.WriteError(w, http.StatusBadRequest, "Content-Type must be application/json", requestID)
		return
	}

	var req models.CheckoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, h.logger, "checkout_failed", err)
		return
	}

	order, err := h.service.Checkout(r.Context(), user, &req, requestID)
	if err != nil {
		httpx.Fail(w, r, h.logger, "checkout_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, order)
}

// ListOrders handles GET /orders?status=pending,approved&limit=50
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var statuses []models.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, models.OrderStatus(strings.TrimSpace(s)))
		}
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Fail(w, r, h.logger, "order_list_failed", &models.ValidationError{Field: "limit", Message: "must be an integer"})
			return
		}
		limit = n
	}

	orders, err := h.service.List(r.Context(), statuses, limit)
	if err != nil {
		httpx.Fail(w, r, h.logger, "order_list_failed", err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}

// GetOrder handles GET /orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, r, h.logger, "order_get_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

// GetHistory handles GET /orders/{id}/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	history, err := h.service.History(r.Context(), id)
	if err != nil {
		httpx.Fail(w, r, h.logger, "order_history_failed", err)
		return
	}
	if history == nil {
		history = []models.OrderStatusHistory{}
	}
	httpx.WriteJSON(w, http.StatusOK, history)
}

// Transition handles POST /orders/{id}/{approve|reject|complete|cancel}
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	requestID := httpx.RequestID(ctx)

	var (
		order *models.Order
		err   error
	)
	switch mux.Vars(r)["action"] {
	case "approve":
		order, err = h.service.Approve(ctx, id, user, requestID)
	case "reject":
		order, err = h.service.Reject(ctx, id, user, requestID)
	case "complete":
		order, err = h.service.Complete(ctx, id, user, requestID)
	case "cancel":
		order, err = h.service.Cancel(ctx, id, user, requestID)
	default:
		httpx.WriteError(w, http.StatusNotFound, "unknown action", requestID)
		return
	}
	if err != nil {
		httpx.Fail(w, r, h.logger, "order_transition_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

// SetDiscount handles PUT /orders/{id}/discount
func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req discountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, h.logger, "order_discount_failed", err)
		return
	}
	if req.Eligible == nil {
		httpx.Fail(w, r, h.logger, "order_discount_failed", &models.ValidationError{Field: "eligible", Message: "is required"})
		return
	}

	order, err := h.service.SetDiscountEligibility(r.Context(), id, *req.Eligible, user, httpx.RequestID(r.Context()))
	if err != nil {
		httpx.Fail(w, r, h.logger, "order_discount_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.Fail(w, r, h.logger, "invalid_order_id", &models.ValidationError{Field: "id", Message: "must be a uuid"})
		return uuid.Nil, false
	}
	return id, true
}
