package openai

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

func newTestModel(t *testing.T, handler http.HandlerFunc) *Model {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m, err := New(Config{APIKey: "test-key", Model: "gpt-test", BaseURL: srv.URL + "/"}, logger.Nop())
	require.NoError(t, err)
	return m
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{Model: "gpt-test"}, logger.Nop())
	assert.Error(t, err)
	_, err = New(Config{APIKey: "k"}, logger.Nop())
	assert.Error(t, err)
}

func TestGenerateContent(t *testing.T) {
	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content any    `json:"content"`
		} `json:"messages"`
	}
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "c1", "object": "chat.completion", "created": 1, "model": "gpt-test",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hi there"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 4, "completion_tokens": 2, "total_tokens": 6}
		}`))
	})

	req := &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText("Hello", genai.RoleUser)},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText("Speak as Krishna.", genai.RoleUser),
		},
	}

	var got []*model.LLMResponse
	for resp, err := range m.GenerateContent(context.Background(), req, false) {
		require.NoError(t, err)
		got = append(got, resp)
	}

	require.Len(t, got, 1)
	assert.Equal(t, "Hi there", got[0].Content.Parts[0].Text)
	assert.Equal(t, genai.FinishReasonStop, got[0].FinishReason)
	assert.Equal(t, int32(6), got[0].UsageMetadata.TotalTokenCount)

	assert.Equal(t, "gpt-test", body.Model)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, "user", body.Messages[1].Role)
}

func TestGenerateContentNoChoices(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-test","choices":[]}`))
	})
	req := &model.LLMRequest{Contents: []*genai.Content{genai.NewContentFromText("Hello", genai.RoleUser)}}
	for _, err := range m.GenerateContent(context.Background(), req, false) {
		assert.Error(t, err)
	}
}

func TestGenerateContentServerError(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	req := &model.LLMRequest{Contents: []*genai.Content{genai.NewContentFromText("Hello", genai.RoleUser)}}
	for _, err := range m.GenerateContent(context.Background(), req, false) {
		assert.Error(t, err)
	}
}
