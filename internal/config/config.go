// Package config defines the application configuration shared by the api and
// chat commands.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	pkgconfig "github.com/lewisedginton/adk_webui/pkg/config"
	"github.com/lewisedginton/adk_webui/pkg/logger"
)

// AppConfig holds all application configuration
type AppConfig struct {
	ServiceName string `env:"SERVICE_NAME" yaml:"service_name" default:"adk-webui"`
	Version     string `env:"VERSION" yaml:"version" default:"dev"`
	Environment string `env:"ENVIRONMENT" yaml:"environment" default:"development"`

	LLM       LLMConfig       `yaml:"llm"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Retry     RetryConfig     `yaml:"retry"`
	Persona   PersonaConfig   `yaml:"persona"`

	// HTTP holds the API listener settings; Chat overrides the port for the form UI.
	HTTP     pkgconfig.HTTPServerConfig `yaml:"http"`
	Chat     ChatConfig                 `yaml:"chat"`
	Security SecurityConfig             `yaml:"security"`
	Metrics  pkgconfig.MetricsConfig    `yaml:"metrics"`
	Health   HealthConfig               `yaml:"health"`
	Logging  LoggingConfig              `yaml:"logging"`
}

// ErrMissingCredential is returned by Validate when the selected provider has no key.
var ErrMissingCredential = errors.New("missing model credential")

// Validate checks the whole configuration and reports every problem at once.
func (c *AppConfig) Validate() error {
	var result error

	if !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, strings.ToLower(c.Logging.Level)) {
		result = multierror.Append(result, fmt.Errorf("log_level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		result = multierror.Append(result, fmt.Errorf("log_format must be either 'json' or 'text', got %q", c.Logging.Format))
	}

	if err := c.validateCredentials(); err != nil {
		result = multierror.Append(result, err)
	}

	for _, v := range []pkgconfig.Validator{c.HTTP, c.Chat, c.Security, c.Metrics, c.Health} {
		if err := v.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := c.Retry.HTTPRetry().Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	return result
}

// validateCredentials enforces the key for the selected provider only.
func (c *AppConfig) validateCredentials() error {
	switch c.LLM.Provider {
	case ProviderGemini:
		if c.Gemini.UseVertexAI {
			if c.Gemini.Project == "" || c.Gemini.Location == "" {
				return fmt.Errorf("%w: GOOGLE_CLOUD_PROJECT and GOOGLE_CLOUD_LOCATION are required for Vertex AI", ErrMissingCredential)
			}
			return nil
		}
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("%w: GOOGLE_API_KEY not found. Create a .env with GOOGLE_API_KEY=...", ErrMissingCredential)
		}
	case ProviderClaude:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("%w: ANTHROPIC_API_KEY is required when LLM_PROVIDER=claude", ErrMissingCredential)
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required when LLM_PROVIDER=openai", ErrMissingCredential)
		}
	default:
		return fmt.Errorf("llm_provider must be one of [gemini, claude, openai], got %q", c.LLM.Provider)
	}
	return nil
}

// GetLogLevel returns the parsed logger level
func (c *AppConfig) GetLogLevel() logger.Level {
	return logger.ParseLevel(c.Logging.Level)
}

// IsDevelopment returns true if running in development environment
func (c *AppConfig) IsDevelopment() bool {
	env := strings.ToLower(c.Environment)
	return env == "development" || env == "dev"
}

// ModelName returns the model configured for the selected provider.
func (c *AppConfig) ModelName() string {
	switch c.LLM.Provider {
	case ProviderClaude:
		return c.Anthropic.Model
	case ProviderOpenAI:
		return c.OpenAI.Model
	default:
		return c.Gemini.Model
	}
}

// ChatHTTP returns the HTTP settings for the chat UI listener.
func (c *AppConfig) ChatHTTP() pkgconfig.HTTPServerConfig {
	h := c.HTTP
	h.Port = c.Chat.Port
	return h
}

// LogConfig logs the current configuration (without sensitive data)
func (c *AppConfig) LogConfig(log logger.Logger) {
	log.Info("Application configuration loaded",
		logger.StringField("service_name", c.ServiceName),
		logger.StringField("version", c.Version),
		logger.StringField("environment", c.Environment),
		logger.StringField("llm_provider", c.LLM.Provider),
		logger.StringField("model", c.ModelName()),
		logger.StringField("agent_name", c.LLM.AgentName),
		logger.BoolField("google_search", c.SearchEnabled()),
		logger.BoolField("vertex_ai", c.LLM.Provider == ProviderGemini && c.Gemini.UseVertexAI),
		logger.IntField("retry_attempts", c.Retry.Attempts),
		logger.IntField("http_port", c.HTTP.Port),
		logger.IntField("chat_port", c.Chat.Port),
		logger.Int64Field("max_request_size", c.Security.MaxRequestSize),
		logger.BoolField("metrics_exposed", c.Metrics.ExposeMetrics),
		logger.IntField("health_grpc_port", c.Health.GRPCPort),
		logger.StringField("log_level", c.Logging.Level),
		logger.StringField("log_format", c.Logging.Format),
	)
}

// SearchEnabled reports whether the Google Search tool is attached. It is
// only available with Gemini models.
func (c *AppConfig) SearchEnabled() bool {
	return c.LLM.Provider == ProviderGemini && !c.LLM.DisableSearch
}
