package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/middleware"
)

// errorDetail is the body of every error response.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

// writeError maps err onto a status code and error body.
// Unknown errors are logged and reported as store_error without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErr *domain.FieldError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		middleware.WriteTooLarge(w)
	case errors.As(err, &fieldErr):
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", fieldErr.Message, fieldErr.Field)
	case errors.Is(err, domain.ErrValidation):
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err), "")
	case errors.Is(err, domain.ErrUnauthorized):
		writeErrorBody(w, http.StatusForbidden, "unauthorized", "administrator capability required", "")
	case errors.Is(err, domain.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, "not_found", "resource not found", "")
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErrorBody(w, http.StatusInternalServerError, "store_error", "internal error", "")
	}
}

func writeErrorBody(w http.ResponseWriter, status int, code, message, field string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message, Field: field}})
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.SuggestionService.Submit: validation error: origin is required" → "origin is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := domain.ErrValidation.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 && i+len(marker) < len(msg) {
		return msg[i+len(marker):]
	}
	return msg
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a single JSON value from the request body into dst.
// Read limits surface as *http.MaxBytesError; anything else unreadable is a
// validation failure on the body.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return domain.NewFieldError("body", "request body is required")
		}
		return domain.NewFieldError("body", "malformed JSON body")
	}
	return nil
}
