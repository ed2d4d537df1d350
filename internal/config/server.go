package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// ChatConfig configures the interactive form UI.
type ChatConfig struct {
	Port        int    `env:"CHAT_PORT" yaml:"port" default:"7860"`
	Title       string `env:"CHAT_TITLE" yaml:"title" default:"ADK Assistant"`
	Description string `env:"CHAT_DESCRIPTION" yaml:"description" default:"Enter a prompt to query the agent."`
}

func (c ChatConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("chat port must be between 1-65535, got %d", c.Port)
	}
	return nil
}

// SecurityConfig holds request limits and CORS settings.
type SecurityConfig struct {
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" yaml:"cors_allowed_origins" default:"*"`
	MaxRequestSize     int64         `env:"MAX_REQUEST_SIZE" yaml:"max_request_size" default:"1048576"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" yaml:"request_timeout" default:"170s"`
	StripPrefix        string        `env:"HTTP_STRIP_PREFIX" yaml:"strip_prefix"`
}

func (s SecurityConfig) Validate() error {
	var result error
	if s.MaxRequestSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("max_request_size must be greater than 0"))
	}
	if s.RequestTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("request_timeout must be greater than 0"))
	}
	if len(s.CORSAllowedOrigins) == 0 {
		result = multierror.Append(result, fmt.Errorf("cors_allowed_origins must not be empty"))
	}
	return result
}

// HealthConfig drives readiness probing and the optional gRPC health server.
type HealthConfig struct {
	GRPCPort             int           `env:"HEALTH_GRPC_PORT" yaml:"grpc_port"`
	CheckTimeout         time.Duration `env:"HEALTH_CHECK_TIMEOUT" yaml:"check_timeout" default:"5s"`
	FailureThreshold     int           `env:"HEALTH_FAILURE_THRESHOLD" yaml:"failure_threshold" default:"3"`
	UpdateInterval       time.Duration `env:"HEALTH_UPDATE_INTERVAL" yaml:"update_interval" default:"15s"`
	DisableUpstreamCheck bool          `env:"HEALTH_DISABLE_UPSTREAM_CHECK" yaml:"disable_upstream_check"`
}

func (h HealthConfig) Validate() error {
	if h.GRPCPort < 0 || h.GRPCPort > 65535 {
		return fmt.Errorf("health grpc port must be between 0-65535, got %d", h.GRPCPort)
	}
	return nil
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" yaml:"level" default:"info"`
	Format string `env:"LOG_FORMAT" yaml:"format" default:"json"`
}
