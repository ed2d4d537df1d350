package httpmiddleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

// CorrelationID assigns every request a fresh correlation ID. Client-supplied
// values are overwritten. The ID is stored in the request context, set on the
// request header for downstream middleware and echoed on the response.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			correlationID := uuid.New().String()

			r.Header.Set(logger.CorrelationIDHeader, correlationID)
			w.Header().Set(logger.CorrelationIDHeader, correlationID)

			ctx := logger.WithCorrelationIDContext(r.Context(), correlationID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
