// Package httpmiddleware assembles the chi middleware stack shared by the
// JSON API and the chat UI.
package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/unrolled/secure"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

// Config selects and configures the middleware applied by ApplyToRouter.
// Start from DefaultConfig and adjust.
type Config struct {
	Logger       logger.Logger
	StripPrefix  string
	CORS         *CORSConfig
	Security     *secure.Options
	Timeout      time.Duration
	MaxBodyBytes int64

	// Metrics is an optional instrumentation middleware, e.g. metrics.HTTPMiddleware().
	Metrics func(http.Handler) http.Handler

	EnableCorrelationID bool
	EnableLogging       bool // requires Logger
	EnableRecovery      bool
	EnableCORS          bool
	EnableSecurity      bool
	EnableCompression   bool
	EnableHeartbeat     bool // serves /ping
	EnableRealIP        bool
	EnableTimeout       bool
	EnableStripPrefix   bool // requires StripPrefix
	EnableBodyLimit     bool // requires MaxBodyBytes
}

// DefaultConfig returns the production middleware set. Logging stays off
// until a Logger is supplied.
func DefaultConfig() Config {
	corsConfig := DefaultCORSConfig()
	return Config{
		CORS:         &corsConfig,
		Timeout:      60 * time.Second,
		MaxBodyBytes: 1 << 20,

		EnableCorrelationID: true,
		EnableRecovery:      true,
		EnableCORS:          true,
		EnableSecurity:      true,
		EnableCompression:   true,
		EnableHeartbeat:     true,
		EnableRealIP:        true,
		EnableTimeout:       true,
		EnableBodyLimit:     true,
	}
}

// Streaming returns a copy of c suitable for long-lived connections such as
// websockets: no request timeout, no compression and no body limit.
func (c Config) Streaming() Config {
	c.EnableTimeout = false
	c.EnableCompression = false
	c.EnableBodyLimit = false
	c.EnableHeartbeat = false
	return c
}

// ApplyToRouter installs the enabled middleware on router. First applied is
// outermost:
//
//	CorrelationID, Security, RealIP, Logging, Recovery, Metrics,
//	StripPrefix, CORS, BodyLimit, Timeout, Compression, Heartbeat
func ApplyToRouter(router chi.Router, config Config) {
	if config.EnableCorrelationID {
		router.Use(CorrelationID())
	}
	if config.EnableSecurity {
		router.Use(Security(config.Security))
	}
	if config.EnableRealIP {
		router.Use(middleware.RealIP)
	}
	if config.EnableLogging && config.Logger != nil {
		router.Use(NewHTTPLogger(config.Logger).Middleware)
	}
	if config.EnableRecovery {
		recovery := DefaultRecoveryConfig()
		recovery.Logger = config.Logger
		router.Use(Recovery(recovery))
	}
	if config.Metrics != nil {
		router.Use(config.Metrics)
	}
	if config.EnableStripPrefix && config.StripPrefix != "" {
		router.Use(StripPrefix(config.StripPrefix))
	}
	if config.EnableCORS && config.CORS != nil {
		router.Use(CORS(*config.CORS))
	}
	if config.EnableBodyLimit && config.MaxBodyBytes > 0 {
		router.Use(BodyLimit(config.MaxBodyBytes))
	}
	if config.EnableTimeout && config.Timeout > 0 {
		router.Use(middleware.Timeout(config.Timeout))
	}
	if config.EnableCompression {
		router.Use(middleware.Compress(5))
	}
	if config.EnableHeartbeat {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// WithLogger applies DefaultConfig with request logging through log.
func WithLogger(router chi.Router, log logger.Logger) {
	config := DefaultConfig()
	config.Logger = log
	config.EnableLogging = true
	ApplyToRouter(router, config)
}
