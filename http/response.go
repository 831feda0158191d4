package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/locker"
)

const (
	msgUnauthorized   = "unauthorized"
	msgNotFound       = "not found"
	msgInvalidRequest = "invalid request"
	msgTooLarge       = "request too large"
	msgInternalError  = "internal server error"
	msgNotAllowed     = "method not allowed"
)

// Response is the envelope every JSON response is wrapped in. Code 200
// means success; any other code mirrors the HTTP status and carries a
// message.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WriteResult writes a success envelope. A nil data omits the field.
func WriteResult(w http.ResponseWriter, data any) {
	if err := WriteJSON(w, http.StatusOK, Response{Code: http.StatusOK, Data: data}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// WriteError writes a failure envelope with the HTTP status set to code.
func WriteError(w http.ResponseWriter, code int, message string) {
	if err := WriteJSON(w, code, Response{Code: code, Message: message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError maps err onto the envelope. Client errors never echo the
// offending value; server errors are logged in full and reported
// generically.
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, locker.ErrUnauthorized):
		slog.Info("request unauthorized", "error", err)
		WriteError(w, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, locker.ErrNotFound):
		slog.Debug("request not found", "error", err)
		WriteError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, locker.ErrInvalidInput),
		errors.Is(err, locker.ErrPathEscape),
		errors.Is(err, locker.ErrInvalidPrefix),
		errors.Is(err, locker.ErrInvalidFormat),
		errors.Is(err, ErrBadRequest):
		slog.Warn("request rejected", "error", err)
		WriteError(w, http.StatusBadRequest, msgInvalidRequest)
	default:
		if errors.Is(err, context.Canceled) {
			slog.Info("request canceled", "error", err)
		} else {
			slog.Error("request error", "error", err)
		}
		WriteError(w, http.StatusInternalServerError, msgInternalError)
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
