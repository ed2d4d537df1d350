package agent

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/geminitool"
	"google.golang.org/genai"

	"github.com/lewisedginton/adk_webui/internal/config"
	"github.com/lewisedginton/adk_webui/internal/models/anthropic"
	"github.com/lewisedginton/adk_webui/internal/models/openai"
	"github.com/lewisedginton/adk_webui/pkg/httpretry"
	"github.com/lewisedginton/adk_webui/pkg/logger"
)

// NewModel creates the LLM for the configured provider. httpClient carries the
// retry policy and is shared by every provider.
func NewModel(ctx context.Context, cfg *config.AppConfig, httpClient *http.Client, log logger.Logger) (model.LLM, error) {
	provider := strings.ToLower(cfg.LLM.Provider)

	switch provider {
	case config.ProviderGemini:
		clientConfig := &genai.ClientConfig{
			HTTPClient: httpClient,
			Backend:    genai.BackendGeminiAPI,
			APIKey:     cfg.Gemini.APIKey,
		}
		if cfg.Gemini.UseVertexAI {
			if cfg.Gemini.Project == "" || cfg.Gemini.Location == "" {
				return nil, fmt.Errorf("%w: Vertex AI needs GOOGLE_CLOUD_PROJECT and GOOGLE_CLOUD_LOCATION", config.ErrMissingCredential)
			}
			clientConfig.Backend = genai.BackendVertexAI
			clientConfig.APIKey = ""
			clientConfig.Project = cfg.Gemini.Project
			clientConfig.Location = cfg.Gemini.Location
			log.Info("Using Vertex AI backend",
				logger.StringField("project", cfg.Gemini.Project),
				logger.StringField("location", cfg.Gemini.Location))
		} else if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("%w: GOOGLE_API_KEY", config.ErrMissingCredential)
		}
		log.Info("Initializing Gemini model", logger.StringField("model", cfg.Gemini.Model))
		return gemini.NewModel(ctx, cfg.Gemini.Model, clientConfig)

	case config.ProviderClaude:
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY", config.ErrMissingCredential)
		}
		log.Info("Initializing Claude model", logger.StringField("model", cfg.Anthropic.Model))
		return anthropic.NewClaudeModel(anthropic.Config{
			APIKey:     cfg.Anthropic.APIKey,
			Model:      cfg.Anthropic.Model,
			BaseURL:    cfg.Anthropic.APIBaseURL,
			MaxTokens:  cfg.Anthropic.MaxTokens,
			HTTPClient: httpClient,
		}, log)

	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY", config.ErrMissingCredential)
		}
		log.Info("Initializing OpenAI model", logger.StringField("model", cfg.OpenAI.Model))
		return openai.New(openai.Config{
			APIKey:     cfg.OpenAI.APIKey,
			Model:      cfg.OpenAI.Model,
			BaseURL:    cfg.OpenAI.APIBaseURL,
			MaxTokens:  cfg.OpenAI.MaxTokens,
			HTTPClient: httpClient,
		}, log)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// Build wires the retrying HTTP client, the model, the persona and the search
// tool into a Runner. sessionPrefix tags the per-call sessions, e.g. "query" or "chat".
func Build(ctx context.Context, cfg *config.AppConfig, sessionPrefix string, log logger.Logger) (*Runner, error) {
	httpClient := httpretry.NewClient(cfg.Retry.HTTPRetry(), log.WithFields(logger.StringField("component", "httpretry")))

	llm, err := NewModel(ctx, cfg, httpClient, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	var tools []tool.Tool
	if cfg.SearchEnabled() {
		tools = append(tools, geminitool.GoogleSearch{})
	}

	persona := ResolvePersona(cfg.Persona, log)
	return New(Config{
		AppName:       cfg.ServiceName,
		Name:          cfg.LLM.AgentName,
		Description:   persona.Description,
		Instruction:   persona.Instruction,
		Model:         llm,
		Tools:         tools,
		SessionPrefix: sessionPrefix,
		Logger:        log,
	})
}
