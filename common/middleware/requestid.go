package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey is a private type for context keys defined in this package.
type contextKey string

// RequestIDKey is the context key under which the request ID is stored.
const RequestIDKey = contextKey("request-id")

// RequestID is a middleware that generates or propagates request IDs.
// It checks for an existing X-Request-ID header and generates a new UUID
// if not present. The request ID is added to the response header and
// stored in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		return reqID
	}
	return ""
}
