package middleware

import (
	"log/slog"
	"net/http"

	"github.com/omarsldn/taskhub/internal/api/shared"
	"github.com/omarsldn/taskhub/internal/platform/logger"
)

// Trace adds a trace ID to the request context and attaches a trace-scoped
// logger, so every log line emitted while serving the request carries the
// same trace_id.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		log := slog.With(slog.String("trace_id", traceID))
		ctx = logger.WithLogger(ctx, log)

		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
