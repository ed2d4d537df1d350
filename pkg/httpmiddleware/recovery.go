package httpmiddleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

// RecoveryConfig configures the panic recovery middleware.
type RecoveryConfig struct {
	Logger           logger.Logger
	EnableStackTrace bool
	// ResponseBody is written with a 500 after a panic.
	ResponseBody        string
	ResponseContentType string
}

// DefaultRecoveryConfig answers panics with the same JSON error shape the API
// uses for every other failure.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		EnableStackTrace:    true,
		ResponseBody:        `{"detail":"Internal server error"}`,
		ResponseContentType: "application/json",
	}
}

// Recovery turns handler panics into a logged 500. http.ErrAbortHandler is
// re-raised so net/http can abort the connection.
func Recovery(config RecoveryConfig) func(http.Handler) http.Handler {
	log := config.Logger
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				logPanic(logger.GetLoggerFromContext(r.Context(), log), r, rec, config.EnableStackTrace)

				w.Header().Set("Content-Type", config.ResponseContentType)
				w.Header().Set("Connection", "close")
				w.WriteHeader(http.StatusInternalServerError)
				if config.ResponseBody != "" {
					_, _ = w.Write([]byte(config.ResponseBody))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func logPanic(log logger.Logger, r *http.Request, rec any, withStack bool) {
	fields := []logger.LogField{
		logger.StringField("panic_error", fmt.Sprintf("%v", rec)),
		logger.HTTPMethodField(r.Method),
		logger.HTTPPathField(r.URL.Path),
		logger.ClientIPField(r.RemoteAddr),
		logger.StringField("user_agent", r.UserAgent()),
	}
	if withStack {
		fields = append(fields, logger.StringField("stack_trace", string(debug.Stack())))
	}
	if r.ContentLength > 0 {
		fields = append(fields, logger.Int64Field("content_length", r.ContentLength))
	}
	log.Error("HTTP request panic recovered", fields...)
}
