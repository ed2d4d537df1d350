// Package openai adapts the OpenAI Chat Completions API to the ADK model.LLM
// interface. Only text is exchanged.
package openai

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

const defaultMaxTokens = 4096

// Config configures a Model.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int
	HTTPClient *http.Client
}

// Model implements the model.LLM interface for OpenAI's GPT models.
type Model struct {
	client    openai.Client
	modelName string
	maxTokens int64
	log       logger.Logger
}

// New creates a new OpenAI model instance.
func New(cfg Config, log logger.Logger) (*Model, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("model name is required")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Model{
		client:    openai.NewClient(opts...),
		modelName: cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		log:       log.WithFields(logger.StringField("component", "openai_model"), logger.StringField("model", cfg.Model)),
	}, nil
}

// Name returns the model name.
func (o *Model) Name() string {
	return o.modelName
}

// GenerateContent yields exactly one complete response; stream is ignored.
func (o *Model) GenerateContent(ctx context.Context, req *model.LLMRequest, _ bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		yield(o.generate(ctx, req))
	}
}

func (o *Model) generate(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.Config != nil {
		if system := joinText(req.Config.SystemInstruction); system != "" {
			messages = append(messages, openai.SystemMessage(system))
		}
	}
	turns := 0
	for _, content := range req.Contents {
		text := joinText(content)
		if text == "" {
			continue
		}
		turns++
		if content.Role == genai.RoleModel {
			messages = append(messages, openai.AssistantMessage(text))
		} else {
			messages = append(messages, openai.UserMessage(text))
		}
	}
	if turns == 0 {
		return nil, errors.New("no text content in request")
	}

	params := openai.ChatCompletionNewParams{
		Model:     o.modelName,
		MaxTokens: openai.Int(o.maxTokens),
		Messages:  messages,
	}
	if req.Config != nil {
		if req.Config.MaxOutputTokens > 0 {
			params.MaxTokens = openai.Int(int64(req.Config.MaxOutputTokens))
		}
		if req.Config.Temperature != nil {
			params.Temperature = openai.Float(float64(*req.Config.Temperature))
		}
	}

	o.log.Debug("Sending request to OpenAI", logger.IntField("messages", len(messages)))
	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}
	return toResponse(completion), nil
}

func joinText(content *genai.Content) string {
	if content == nil {
		return ""
	}
	var parts []string
	for _, p := range content.Parts {
		if p != nil && p.Text != "" && !p.Thought {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func toResponse(completion *openai.ChatCompletion) *model.LLMResponse {
	choice := completion.Choices[0]

	var parts []*genai.Part
	if choice.Message.Content != "" {
		parts = append(parts, genai.NewPartFromText(choice.Message.Content))
	}

	finish := genai.FinishReasonOther
	switch choice.FinishReason {
	case "stop":
		finish = genai.FinishReasonStop
	case "length":
		finish = genai.FinishReasonMaxTokens
	case "content_filter":
		finish = genai.FinishReasonSafety
	}

	return &model.LLMResponse{
		Content: &genai.Content{Role: genai.RoleModel, Parts: parts},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     int32(completion.Usage.PromptTokens),
			CandidatesTokenCount: int32(completion.Usage.CompletionTokens),
			TotalTokenCount:      int32(completion.Usage.TotalTokens),
		},
		FinishReason: finish,
		TurnComplete: true,
	}
}
