package middleware

import (
	"context"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const maxRequestIDLength = 128

// RequestID stores a request ID under chi's RequestIDKey, where the request
// logger picks it up, and echoes it in X-Request-Id. A client-supplied ID is
// kept when it is safe to log; otherwise a UUIDv4 is minted.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := incomingRequestID(r.Header)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(chimiddleware.RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// incomingRequestID returns X-Request-Id when it is 1 to 128 bytes of
// printable ASCII, and "" otherwise.
func incomingRequestID(h http.Header) string {
	id := h.Get(chimiddleware.RequestIDHeader)
	if id == "" || len(id) > maxRequestIDLength {
		return ""
	}
	if strings.IndexFunc(id, func(c rune) bool { return c < 0x20 || c > 0x7e }) >= 0 {
		return ""
	}
	return id
}
