package logging

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger attaches a logger carrying requestId to the request context.
// With a projectID and a valid traceparent the logger also carries the Cloud
// Trace fields, and the trace resource becomes the correlation ID.
func RequestLogger(projectID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimiddleware.GetReqID(r.Context())
			logger := Logger()
			correlationID := reqID

			if reqID != "" {
				logger = logger.With(zap.String("requestId", reqID))
			}
			if projectID != "" {
				if tc, ok := parseTraceparent(r.Header.Get(traceparentHeader)); ok {
					logger = logger.With(tc.fields(projectID)...)
					correlationID = tc.resource(projectID)
				}
			}
			next.ServeHTTP(w, r.WithContext(withScope(r.Context(), logger, correlationID)))
		})
	}
}

// AccessLogger writes one "request completed" line per request. Server
// errors are logged at error level, everything else at info.
func AccessLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remoteIp", r.RemoteAddr),
				zap.String("userAgent", r.UserAgent()),
			}
			logger := LoggerFromContext(r.Context())
			if status >= http.StatusInternalServerError {
				logger.Error("request completed", fields...)
				return
			}
			logger.Info("request completed", fields...)
		})
	}
}
