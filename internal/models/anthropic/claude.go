// Package anthropic adapts Anthropic's Messages API to the ADK model.LLM
// interface. Only text is exchanged; tool calls are not supported.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

const defaultMaxTokens = 4096

// Config configures a ClaudeModel.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	// HTTPClient carries the retry policy. SDK-level retries are disabled.
	HTTPClient *http.Client
}

// ClaudeModel implements model.LLM for Claude models.
type ClaudeModel struct {
	client    anthropic.Client
	modelName string
	maxTokens int64
	log       logger.Logger
}

// NewClaudeModel creates a Claude model.
func NewClaudeModel(cfg Config, log logger.Logger) (*ClaudeModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = string(anthropic.ModelClaudeSonnet4_5_20250929)
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

	return &ClaudeModel{
		client:    anthropic.NewClient(opts...),
		modelName: cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		log:       log.WithFields(logger.StringField("component", "claude_model"), logger.StringField("model", cfg.Model)),
	}, nil
}

// Name returns the name of the model
func (c *ClaudeModel) Name() string {
	return c.modelName
}

// GenerateContent yields exactly one complete response; stream is ignored.
func (c *ClaudeModel) GenerateContent(ctx context.Context, req *model.LLMRequest, _ bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		yield(c.generate(ctx, req))
	}
}

func (c *ClaudeModel) generate(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	messages := toMessages(req.Contents)
	if len(messages) == 0 {
		return nil, errors.New("no text content in request")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelName),
		MaxTokens: c.maxTokens,
		Messages:  messages,
	}
	if req.Config != nil {
		if system := joinText(req.Config.SystemInstruction); system != "" {
			params.System = []anthropic.TextBlockParam{{Text: system}}
		}
		if req.Config.MaxOutputTokens > 0 {
			params.MaxTokens = int64(req.Config.MaxOutputTokens)
		}
		if req.Config.Temperature != nil {
			params.Temperature = anthropic.Float(float64(*req.Config.Temperature))
		}
	}

	c.log.Debug("Sending request to Anthropic", logger.IntField("messages", len(messages)))
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("claude api error: %w", err)
	}
	return toResponse(msg), nil
}

// toMessages keeps the text of user and model turns.
func toMessages(contents []*genai.Content) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, content := range contents {
		text := joinText(content)
		if text == "" {
			continue
		}
		if content.Role == genai.RoleModel {
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
			continue
		}
		out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
	}
	return out
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

func toResponse(msg *anthropic.Message) *model.LLMResponse {
	var parts []*genai.Part
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, genai.NewPartFromText(block.Text))
		}
	}

	finish := genai.FinishReasonOther
	switch string(msg.StopReason) {
	case "end_turn", "stop_sequence":
		finish = genai.FinishReasonStop
	case "max_tokens":
		finish = genai.FinishReasonMaxTokens
	}

	return &model.LLMResponse{
		Content: &genai.Content{Role: genai.RoleModel, Parts: parts},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     int32(msg.Usage.InputTokens),
			CandidatesTokenCount: int32(msg.Usage.OutputTokens),
			TotalTokenCount:      int32(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
		FinishReason: finish,
		TurnComplete: true,
	}
}
