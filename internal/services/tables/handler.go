package tables

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"restaurant-pos/internal/httpx"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Handler serves the table board
type Handler struct {
	registry *Registry
	logger   *logger.Logger
}

// NewHandler creates a new table handler
func NewHandler(registry *Registry, log *logger.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   log,
	}
}

// RegisterRoutes mounts the table endpoints on r
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/tables", h.ListTables).Methods(http.MethodGet)
	r.HandleFunc("/tables/{number:[0-9]+}", h.SetTableStatus).Methods(http.MethodPut)
}

type setStatusRequest struct {
	Status models.TableStatus `json:"status"`
}

// ListTables handles GET /tables
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.registry.List(r.Context())
	if err != nil {
		httpx.Fail(w, r, h.logger, "table_list_failed", err)
		return
	}
	if tables == nil {
		tables = []models.Table{}
	}
	httpx.WriteJSON(w, http.StatusOK, tables)
}

// SetTableStatus handles PUT /tables/{number}
func (h *Handler) SetTableStatus(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(mux.Vars(r)["number"])
	if err != nil {
		httpx.Fail(w, r, h.logger, "table_update_failed", &models.ValidationError{Field: "number", Message: "must be an integer"})
		return
	}

	var req setStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, h.logger, "table_update_failed", err)
		return
	}

	if err := h.registry.SetStatus(r.Context(), number, req.Status, httpx.RequestID(r.Context())); err != nil {
		httpx.Fail(w, r, h.logger, "table_update_failed", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"table_number": number,
		"status":       req.Status,
	})
}
