package cart

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"restaurant-pos/internal/httpx"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Handler serves the customer's cart
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new cart handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes mounts the cart endpoints on r
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	r.HandleFunc("/cart/items", h.AddItem).Methods(http.MethodPost)
	r.HandleFunc("/cart/items/{menuItemID}", h.RemoveItem).Methods(http.MethodDelete)
}

type cartResponse struct {
	*models.Cart
	Total string `json:"total"`
}

func newCartResponse(c *models.Cart) cartResponse {
	return cartResponse{Cart: c, Total: c.Total().StringFixed(2)}
}

// GetCart handles GET /cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(r.Context(), user.ID)
	if err != nil {
		httpx.Fail(w, r, h.logger, "cart_get_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newCartResponse(cart))
}

// AddItem handles POST /cart/items
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}

	var req models.AddCartItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, h.logger, "cart_add_failed", err)
		return
	}

	cart, err := h.service.AddItem(r.Context(), user.ID, req, httpx.RequestID(r.Context()))
	if err != nil {
		httpx.Fail(w, r, h.logger, "cart_add_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newCartResponse(cart))
}

// RemoveItem handles DELETE /cart/items/{menuItemID}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}

	menuItemID, err := uuid.Parse(mux.Vars(r)["menuItemID"])
	if err != nil {
		httpx.Fail(w, r, h.logger, "cart_remove_failed", &models.ValidationError{Field: "menuItemID", Message: "must be a uuid"})
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), user.ID, menuItemID)
	if err != nil {
		httpx.Fail(w, r, h.logger, "cart_remove_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newCartResponse(cart))
}
