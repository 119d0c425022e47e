package middleware

import (
	"context"
	"net/http"

	"github.com/frahmantamala/lead-management/pkg/logger"

	"github.com/google/uuid"
)

type traceIDKey struct{}

// RequestID assigns every request a trace ID, honoring one supplied by the
// caller. The ID rides the context, the request-scoped logger and the
// X-Trace-ID response header, so a support ticket quoting the header can be
// matched to log lines.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), traceIDKey{}, traceID)
		ctx = logger.With(ctx, "trace_id", traceID)

		w.Header().Set("X-Trace-ID", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TraceIDFromContext returns the trace ID set by RequestID, or "".
func TraceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}
