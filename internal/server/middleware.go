package server

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/google/uuid"

	"github.com/dmitrymomot/hirewire/pkg/logger"
)

type requestIDKey struct{}

// requestIDHeaders are checked in order so upstream tracing IDs survive.
var requestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// RequestID assigns each request an ID, preferring one provided upstream,
// and echoes it in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqID string
		for _, header := range requestIDHeaders {
			if v := r.Header.Get(header); v != "" {
				reqID = v
				break
			}
		}
		if reqID == "" {
			reqID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", reqID)
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDExtractor adds request_id to log entries carrying our context.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}

// Recover turns handler panics into 500 responses instead of dropped
// connections.
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					stack := make([]byte, 4096)
					stack = stack[:runtime.Stack(stack, false)]
					log.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(stack)),
					)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
