package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/lewisedginton/adk_webui/pkg/config"
	"github.com/lewisedginton/adk_webui/pkg/logger"
)

var appEnv = []string{
	"LLM_PROVIDER", "GOOGLE_API_KEY", "GOOGLE_GENAI_USE_VERTEXAI", "GOOGLE_CLOUD_PROJECT",
	"GOOGLE_CLOUD_LOCATION", "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "LOG_LEVEL", "LOG_FORMAT",
	"HTTP_PORT", "CHAT_PORT", "RETRY_ATTEMPTS", "RETRY_STATUS_CODES", "DISABLE_GOOGLE_SEARCH",
	"MAX_REQUEST_SIZE", "METRICS_EXPOSE", "HEALTH_GRPC_PORT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range appEnv {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "test-key")

	var cfg AppConfig
	require.NoError(t, pkgconfig.GetConfigFromEnvVars(&cfg))

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "Krishna_clone_agent", cfg.LLM.AgentName)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.Gemini.Model)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.ModelName())
	assert.True(t, cfg.SearchEnabled())

	assert.Equal(t, 5, cfg.Retry.Attempts)
	assert.Equal(t, time.Second, cfg.Retry.InitialDelay)
	assert.Equal(t, 7.0, cfg.Retry.ExpBase)
	assert.Equal(t, []int{429, 500, 503, 504}, cfg.Retry.StatusCodes)

	assert.Equal(t, 8000, cfg.HTTP.Port)
	assert.Equal(t, 7860, cfg.Chat.Port)
	assert.Equal(t, 7860, cfg.ChatHTTP().Port)
	assert.Equal(t, cfg.HTTP.WriteTimeoutSeconds, cfg.ChatHTTP().WriteTimeoutSeconds)
	assert.Equal(t, int64(1<<20), cfg.Security.MaxRequestSize)
	assert.Equal(t, []string{"*"}, cfg.Security.CORSAllowedOrigins)
	assert.Equal(t, 0, cfg.Health.GRPCPort)
	assert.Equal(t, logger.InfoLevel, cfg.GetLogLevel())
	assert.True(t, cfg.IsDevelopment())
}

func TestMissingCredentialIsFatal(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"gemini without key", map[string]string{}},
		{"vertex without project", map[string]string{"GOOGLE_GENAI_USE_VERTEXAI": "true"}},
		{"claude without key", map[string]string{"LLM_PROVIDER": "claude", "GOOGLE_API_KEY": "unused"}},
		{"openai without key", map[string]string{"LLM_PROVIDER": "openai"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			var cfg AppConfig
			err := pkgconfig.GetConfigFromEnvVars(&cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingCredential), err.Error())
		})
	}
}

func TestProviderCredentials(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		model string
	}{
		{"vertex", map[string]string{"GOOGLE_GENAI_USE_VERTEXAI": "true", "GOOGLE_CLOUD_PROJECT": "p", "GOOGLE_CLOUD_LOCATION": "us-central1"}, "gemini-2.5-flash-lite"},
		{"claude", map[string]string{"LLM_PROVIDER": "claude", "ANTHROPIC_API_KEY": "k"}, "claude-sonnet-4-5-20250929"},
		{"openai", map[string]string{"LLM_PROVIDER": "openai", "OPENAI_API_KEY": "k"}, "gpt-4o-mini"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			var cfg AppConfig
			require.NoError(t, pkgconfig.GetConfigFromEnvVars(&cfg))
			assert.Equal(t, tc.model, cfg.ModelName())
			assert.Equal(t, tc.name == "vertex", cfg.SearchEnabled())
		})
	}
}

func TestValidationCollectsAllErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "llama")
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("LOG_FORMAT", "xml")
	t.Setenv("RETRY_ATTEMPTS", "-1")

	var cfg AppConfig
	err := pkgconfig.GetConfigFromEnvVars(&cfg)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "llm_provider")
	assert.Contains(t, msg, "log_level")
	assert.Contains(t, msg, "log_format")
	assert.Contains(t, msg, "retry attempts")
}

func TestSearchToggle(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "k")
	t.Setenv("DISABLE_GOOGLE_SEARCH", "true")

	var cfg AppConfig
	require.NoError(t, pkgconfig.GetConfigFromEnvVars(&cfg))
	assert.False(t, cfg.SearchEnabled())
}

func TestYAMLFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
llm:
  agent_name: Sage
gemini:
  model: gemini-2.5-pro
retry:
  attempts: 2
http:
  port: 9100
chat:
  title: Sage
persona:
  instruction: Be brief.
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	var cfg AppConfig
	require.NoError(t, pkgconfig.GetConfig(&cfg, path, false))
	assert.Equal(t, "Sage", cfg.LLM.AgentName)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 2, cfg.Retry.Attempts)
	assert.Equal(t, 9100, cfg.HTTP.Port)
	assert.Equal(t, "Sage", cfg.Chat.Title)
	assert.Equal(t, "Be brief.", cfg.Persona.Instruction)
	assert.Equal(t, "from-env", cfg.Gemini.APIKey)
}

func TestLogConfigOmitsSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "super-secret")

	var cfg AppConfig
	require.NoError(t, pkgconfig.GetConfigFromEnvVars(&cfg))

	var buf bytes.Buffer
	cfg.LogConfig(logger.NewLogger(logger.Config{Level: logger.InfoLevel, Output: &buf}))
	assert.Contains(t, buf.String(), "gemini-2.5-flash-lite")
	assert.NotContains(t, buf.String(), "super-secret")
}
