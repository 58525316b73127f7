package notification

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"restaurant-pos/internal/httpx"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Handler serves the customer's notifications
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new notification handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes mounts the notification endpoints on r
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/notifications", h.List).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}/read", h.MarkRead).Methods(http.MethodPost)
}

// List handles GET /notifications
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.service.List(r.Context(), user.ID, limit)
	if err != nil {
		httpx.Fail(w, r, h.logger, "notification_list_failed", err)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

// MarkRead handles POST /notifications/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.RequireUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.Fail(w, r, h.logger, "notification_read_failed", &models.ValidationError{Field: "id", Message: "must be a uuid"})
		return
	}

	if err := h.service.MarkRead(r.Context(), id, user.ID); err != nil {
		httpx.Fail(w, r, h.logger, "notification_read_failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
