package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

func newTestModel(t *testing.T, handler http.HandlerFunc) *ClaudeModel {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m, err := NewClaudeModel(Config{APIKey: "test-key", Model: "claude-test", BaseURL: srv.URL}, logger.Nop())
	require.NoError(t, err)
	return m
}

func request(prompt string) *model.LLMRequest {
	return &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText("Speak as Krishna.", genai.RoleUser),
		},
	}
}

func TestNewClaudeModelRequiresKey(t *testing.T) {
	_, err := NewClaudeModel(Config{}, logger.Nop())
	assert.Error(t, err)
}

func TestGenerateContent(t *testing.T) {
	var body map[string]any
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-test",
			"content": [{"type": "text", "text": "Hi there"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 3, "output_tokens": 2}
		}`))
	})

	var responses []*model.LLMResponse
	for resp, err := range m.GenerateContent(context.Background(), request("Hello"), false) {
		require.NoError(t, err)
		responses = append(responses, resp)
	}

	require.Len(t, responses, 1)
	resp := responses[0]
	require.NotNil(t, resp.Content)
	require.Len(t, resp.Content.Parts, 1)
	assert.Equal(t, "Hi there", resp.Content.Parts[0].Text)
	assert.Equal(t, genai.RoleModel, resp.Content.Role)
	assert.Equal(t, genai.FinishReasonStop, resp.FinishReason)
	assert.Equal(t, int32(5), resp.UsageMetadata.TotalTokenCount)
	assert.True(t, resp.TurnComplete)

	assert.Equal(t, "claude-test", body["model"])
	system, _ := body["system"].([]any)
	require.Len(t, system, 1)
	assert.Equal(t, "Speak as Krishna.", system[0].(map[string]any)["text"])
}

func TestGenerateContentAPIError(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	})

	for _, err := range m.GenerateContent(context.Background(), request("Hello"), false) {
		assert.Error(t, err)
	}
}

func TestGenerateContentEmptyRequest(t *testing.T) {
	m := newTestModel(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("upstream must not be called")
	})
	for _, err := range m.GenerateContent(context.Background(), &model.LLMRequest{}, false) {
		assert.Error(t, err)
	}
}

func TestToMessagesSkipsEmptyAndThoughts(t *testing.T) {
	contents := []*genai.Content{
		genai.NewContentFromText("q1", genai.RoleUser),
		{Role: genai.RoleModel, Parts: []*genai.Part{{Text: "thinking", Thought: true}, {Text: "a1"}}},
		{Role: genai.RoleUser},
	}
	msgs := toMessages(contents)
	require.Len(t, msgs, 2)
	assert.Equal(t, "a1", joinText(contents[1]))
}
