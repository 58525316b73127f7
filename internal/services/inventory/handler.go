package inventory

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"restaurant-pos/internal/httpx"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Handler serves the menu
type Handler struct {
	ledger *Ledger
	logger *logger.Logger
}

// NewHandler creates a new menu handler
func NewHandler(ledger *Ledger, log *logger.Logger) *Handler {
	return &Handler{
		ledger: ledger,
		logger: log,
	}
}

// RegisterRoutes mounts the menu endpoints on r
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/menu", h.ListMenu).Methods(http.MethodGet)
	r.HandleFunc("/menu/{id}", h.GetMenuItem).Methods(http.MethodGet)
}

// ListMenu handles GET /menu
func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.ledger.List(r.Context())
	if err != nil {
		httpx.Fail(w, r, h.logger, "menu_list_failed", err)
		return
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

// GetMenuItem handles GET /menu/{id}
func (h *Handler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.Fail(w, r, h.logger, "menu_get_failed", &models.ValidationError{Field: "id", Message: "must be a uuid"})
		return
	}

	item, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, r, h.logger, "menu_get_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}
