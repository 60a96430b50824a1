package middleware

import (
	"encoding/json"
	"net/http"
)

// NewMaxBodySizeHandler limits request bodies to limit bytes.
//
// A request whose Content-Length already exceeds the limit is answered with
// 413 before the next handler runs. Otherwise the body is wrapped in
// http.MaxBytesReader, so a streamed body that grows past the limit fails on
// read with *http.MaxBytesError; handlers map that to 413 themselves.
// A non-positive limit disables the check.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				WriteTooLarge(w)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// WriteTooLarge writes the 413 error body shared by this middleware and the
// JSON handlers.
func WriteTooLarge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusRequestEntityTooLarge)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "payload_too_large", "message": "request body too large"},
	})
}
