package middleware

import (
	"net/http"

	"github.com/frahmantamala/payroll-management/pkg/logger"
	"github.com/google/uuid"
)

const HeaderTraceID = "X-Trace-ID"

// RequestID attaches a trace id to the request logger and echoes it back.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "trace_id", traceID)
		w.Header().Set(HeaderTraceID, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
