// Package agent builds the single persona agent and runs one prompt at a time
// through the ADK runner.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	adkagent "google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/genai"

	"github.com/lewisedginton/adk_webui/pkg/logger"
	"github.com/lewisedginton/adk_webui/pkg/prefixed_uuid"
)

const (
	defaultAppName       = "adk_webui"
	defaultUserID        = "webui"
	defaultSessionPrefix = "query"
	sessionDeleteTimeout = 5 * time.Second
)

// Reply is the agent's answer to one prompt.
type Reply struct {
	Text string
	// SearchUsed is set when the answer was grounded with Google Search.
	SearchUsed bool
}

// Error describes a failed agent call.
type Error struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("agent %s failed [%s]: %s", e.Op, e.Code, msg)
	}
	return fmt.Sprintf("agent %s failed: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrEmptyReply is wrapped when the model finished without producing text.
var ErrEmptyReply = errors.New("agent returned no text")

// Config describes the agent and how calls are tracked.
type Config struct {
	AppName     string
	Name        string
	Description string
	Instruction string
	Model       model.LLM
	Tools       []tool.Tool

	// UserID and SessionPrefix identify the throwaway sessions opened per call.
	UserID        string
	SessionPrefix string

	Logger logger.Logger
}

// Runner answers prompts with a shared agent. Every Invoke opens its own
// session and deletes it afterwards, so calls never see each other's history.
type Runner struct {
	appName       string
	userID        string
	sessionPrefix string
	agentName     string

	runner   *runner.Runner
	sessions session.Service
	log      logger.Logger

	newSessionID func() string
}

// New builds the agent and its runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Model == nil {
		return nil, errors.New("agent model is required")
	}
	if cfg.Name == "" {
		return nil, errors.New("agent name is required")
	}
	if cfg.AppName == "" {
		cfg.AppName = defaultAppName
	}
	if cfg.UserID == "" {
		cfg.UserID = defaultUserID
	}
	if cfg.SessionPrefix == "" {
		cfg.SessionPrefix = defaultSessionPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	llmAgent, err := llmagent.New(llmagent.Config{
		Name:        cfg.Name,
		Model:       cfg.Model,
		Description: cfg.Description,
		Instruction: cfg.Instruction,
		Tools:       cfg.Tools,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        cfg.AppName,
		Agent:          llmAgent,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	prefix := cfg.SessionPrefix
	return &Runner{
		appName:       cfg.AppName,
		userID:        cfg.UserID,
		sessionPrefix: prefix,
		agentName:     cfg.Name,
		runner:        r,
		sessions:      sessions,
		log:           cfg.Logger.WithFields(logger.StringField("component", "agent"), logger.StringField("agent", cfg.Name)),
		newSessionID:  func() string { return prefixed_uuid.New(prefix).String() },
	}, nil
}

// Name returns the agent's name.
func (r *Runner) Name() string {
	return r.agentName
}

// Invoke sends prompt to the agent and returns its final text. Upstream and
// runner failures are returned as *Error.
func (r *Runner) Invoke(ctx context.Context, prompt string) (Reply, error) {
	sessionID := r.newSessionID()
	log := logger.GetLoggerFromContext(ctx, r.log).WithFields(logger.StringField("session_id", sessionID))

	if _, err := r.sessions.Create(ctx, &session.CreateRequest{
		AppName:   r.appName,
		UserID:    r.userID,
		SessionID: sessionID,
	}); err != nil {
		return Reply{}, &Error{Op: "create session", Err: err}
	}
	defer r.deleteSession(ctx, sessionID, log)

	start := time.Now()
	events := r.runner.Run(ctx, r.userID, sessionID,
		genai.NewContentFromText(prompt, genai.RoleUser),
		adkagent.RunConfig{StreamingMode: adkagent.StreamingModeNone})

	var c collector
	for event, err := range events {
		if err != nil {
			return Reply{}, &Error{Op: "run", Err: err}
		}
		if event == nil {
			continue
		}
		if event.ErrorCode != "" || event.ErrorMessage != "" {
			return Reply{}, &Error{Op: "run", Code: event.ErrorCode, Message: event.ErrorMessage}
		}
		c.add(event)
	}

	reply := c.reply()
	if reply.Text == "" {
		return Reply{}, &Error{Op: "run", Code: string(c.finishReason), Err: ErrEmptyReply}
	}

	log.Debug("Agent replied",
		logger.DurationField("duration", time.Since(start)),
		logger.IntField("events", c.events),
		logger.BoolField("search_used", reply.SearchUsed))
	return reply, nil
}

// deleteSession runs even when ctx was cancelled so sessions never pile up.
func (r *Runner) deleteSession(ctx context.Context, sessionID string, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sessionDeleteTimeout)
	defer cancel()

	if err := r.sessions.Delete(ctx, &session.DeleteRequest{
		AppName:   r.appName,
		UserID:    r.userID,
		SessionID: sessionID,
	}); err != nil {
		log.Warn("Failed to delete agent session", logger.ErrorField(err))
	}
}
