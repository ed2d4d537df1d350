// Package query is the request-handling core shared by the API and the chat UI.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lewisedginton/adk_webui/internal/agent"
	"github.com/lewisedginton/adk_webui/pkg/logger"
	"github.com/lewisedginton/adk_webui/pkg/metrics"
)

// Placeholder is returned instead of calling the agent when the prompt is blank.
const Placeholder = "Prompt cannot be empty"

// ErrAgent wraps every failure of the underlying agent call.
var ErrAgent = errors.New("agent call failed")

// Invoker is the agent capability the service needs.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (agent.Reply, error)
}

// Response is the answer to one prompt.
type Response struct {
	Text       string `json:"text"`
	SearchUsed bool   `json:"search_used,omitempty"`
}

// HealthStatus is the liveness payload.
type HealthStatus struct {
	Status string `json:"status"`
}

// Service answers prompts with a single shared agent. It keeps no state
// between calls and is safe for concurrent use.
type Service struct {
	agent   Invoker
	metrics *metrics.Metrics
	log     logger.Logger
}

// NewService creates a Service. m may be nil.
func NewService(a Invoker, m *metrics.Metrics, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		agent:   a,
		metrics: m,
		log:     log.WithFields(logger.StringField("component", "query")),
	}
}

// Answer returns the agent's reply to prompt. A blank prompt yields the
// placeholder without calling the agent.
func (s *Service) Answer(ctx context.Context, prompt string) (Response, error) {
	log := logger.GetLoggerFromContext(ctx, s.log)
	s.metrics.IncrementAgentCall(metrics.AgentCallTotal)

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		s.metrics.IncrementAgentCall(metrics.AgentCallShortCircuited)
		log.Debug("Blank prompt, skipping agent call")
		return Response{Text: Placeholder}, nil
	}

	start := time.Now()
	reply, err := s.agent.Invoke(ctx, prompt)
	elapsed := time.Since(start)
	s.metrics.ObserveAgentDuration(elapsed)

	if err != nil {
		s.metrics.IncrementAgentCall(metrics.AgentCallFailed)
		log.Error("Agent call failed", logger.ErrorField(err), logger.DurationField("duration", elapsed))
		return Response{}, fmt.Errorf("%w: %w", ErrAgent, err)
	}

	s.metrics.IncrementAgentCall(metrics.AgentCallSuccess)
	log.Info("Agent call completed",
		logger.IntField("prompt_length", len(prompt)),
		logger.IntField("response_length", len(reply.Text)),
		logger.BoolField("search_used", reply.SearchUsed),
		logger.DurationField("duration", elapsed))
	return Response{Text: reply.Text, SearchUsed: reply.SearchUsed}, nil
}

// Health reports liveness. It never touches the agent.
func (s *Service) Health() HealthStatus {
	return HealthStatus{Status: "ok"}
}
