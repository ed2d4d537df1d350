package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

// HTTPLogger logs one line per request and one per response.
type HTTPLogger struct {
	logger logger.Logger
}

// NewHTTPLogger creates a new HTTP logger middleware
func NewHTTPLogger(log logger.Logger) *HTTPLogger {
	return &HTTPLogger{logger: log}
}

// Middleware returns the HTTP logging middleware. 5xx responses are logged at
// warn level.
func (h *HTTPLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestLogger := h.RequestLogger(r)
		requestLogger.Debug("HTTP request received")

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []logger.LogField{
			logger.HTTPStatusField(status),
			logger.IntField("response_bytes", ww.BytesWritten()),
			logger.DurationField("duration", time.Since(start)),
		}
		if status >= http.StatusInternalServerError {
			requestLogger.Warn("HTTP response sent", fields...)
			return
		}
		requestLogger.Info("HTTP response sent", fields...)
	})
}

// RequestLogger returns the base logger enriched with the request's client,
// method, path and correlation ID.
func (h *HTTPLogger) RequestLogger(r *http.Request) logger.Logger {
	return logger.GetLoggerFromContext(r.Context(), h.logger).WithFields(
		logger.ClientIPField(r.RemoteAddr),
		logger.HTTPMethodField(r.Method),
		logger.HTTPPathField(r.URL.Path),
	)
}
