package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

type requestIDKey struct{}

// RequestID returns the id the logging middleware attached to ctx
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WriteJSON writes v with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, statusCode int, message, requestID string) {
	WriteJSON(w, statusCode, map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	})
}

// StatusFor maps domain errors onto HTTP status codes
func StatusFor(err error) int {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, models.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrAlreadyOccupied),
		errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, models.ErrPersistence), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Fail logs err and writes it with the mapped status; internal details are not exposed
func Fail(w http.ResponseWriter, r *http.Request, log *logger.Logger, action string, err error) {
	requestID := RequestID(r.Context())
	status := StatusFor(err)

	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		message = "Internal server error"
	case http.StatusServiceUnavailable:
		message = "Service temporarily unavailable"
	}

	if status >= http.StatusInternalServerError {
		log.Error(action, "Request failed", requestID, err, map[string]interface{}{
			"path": r.URL.Path,
		})
	} else {
		log.Debug(action, err.Error(), requestID, map[string]interface{}{
			"path":        r.URL.Path,
			"status_code": status,
		})
	}
	WriteError(w, status, message, requestID)
}

// DecodeJSON decodes the request body into v, rejecting unknown fields
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return &models.ValidationError{Field: "body", Message: "invalid JSON format"}
	}
	return nil
}

// RequireUser returns the authenticated caller or writes 401
func RequireUser(w http.ResponseWriter, r *http.Request) (models.CurrentUser, bool) {
	user, ok := models.UserFrom(r.Context())
	if !ok || user.ID == "" {
		WriteError(w, http.StatusUnauthorized, "unauthorized", RequestID(r.Context()))
		return models.CurrentUser{}, false
	}
	return user, true
}
