// Package server assembles the agent, the query service and the listeners for
// the api and chat front-ends, and runs them until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/grpc"

	"github.com/lewisedginton/adk_webui/internal/agent"
	"github.com/lewisedginton/adk_webui/internal/api"
	"github.com/lewisedginton/adk_webui/internal/chatui"
	appconfig "github.com/lewisedginton/adk_webui/internal/config"
	"github.com/lewisedginton/adk_webui/internal/query"
	pkgconfig "github.com/lewisedginton/adk_webui/pkg/config"
	"github.com/lewisedginton/adk_webui/pkg/health"
	"github.com/lewisedginton/adk_webui/pkg/health/checkers"
	"github.com/lewisedginton/adk_webui/pkg/httpmiddleware"
	"github.com/lewisedginton/adk_webui/pkg/logger"
	"github.com/lewisedginton/adk_webui/pkg/metrics"
	"github.com/lewisedginton/adk_webui/pkg/utils"
)

// Mode selects which front-end the server exposes.
type Mode string

const (
	ModeAPI  Mode = "api"
	ModeChat Mode = "chat"
)

// Server owns one front-end and its supporting listeners.
type Server struct {
	cfg     *appconfig.AppConfig
	mode    Mode
	log     logger.Logger
	metrics *metrics.Metrics
	health  *health.HealthChecker
	service *query.Service
	handler http.Handler
}

// New builds the agent for cfg and the front-end selected by mode. It fails
// when the provider credential is missing, before anything listens.
func New(ctx context.Context, cfg *appconfig.AppConfig, mode Mode, log logger.Logger) (*Server, error) {
	runner, err := agent.Build(ctx, cfg, string(mode), log)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	log.Info("Agent ready",
		logger.StringField("agent", runner.Name()),
		logger.StringField("provider", cfg.LLM.Provider),
		logger.StringField("model", cfg.ModelName()))
	return NewWithAgent(cfg, mode, runner, log)
}

// NewWithAgent wires the front-end around an existing agent.
func NewWithAgent(cfg *appconfig.AppConfig, mode Mode, invoker query.Invoker, log logger.Logger) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		mode:    mode,
		log:     log.WithFields(logger.StringField("mode", string(mode))),
		metrics: metrics.NewMetrics(cfg.Metrics.EnableHTTPMetrics, log),
	}
	s.health = s.createHealthChecker()
	s.service = query.NewService(invoker, s.metrics, s.log)

	mw := s.middlewareConfig()
	switch mode {
	case ModeAPI:
		s.handler = api.NewRouter(api.Config{
			Service:    s.service,
			Health:     s.health,
			Middleware: mw,
			Logger:     s.log,
		})
	case ModeChat:
		s.handler = chatui.NewRouter(chatui.Config{
			Service:         s.service,
			Title:           cfg.Chat.Title,
			Description:     cfg.Chat.Description,
			Middleware:      mw,
			MaxMessageBytes: cfg.Security.MaxRequestSize,
			Logger:          s.log,
		})
	default:
		return nil, fmt.Errorf("unknown server mode: %q", mode)
	}
	return s, nil
}

// Handler returns the front-end's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Health returns the readiness checker backing /health/ready and gRPC health.
func (s *Server) Health() *health.HealthChecker {
	return s.health
}

// Run starts the front-end, the optional metrics listener and the optional
// gRPC health server, then blocks until ctx is done or a listener fails.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpCfg := s.cfg.HTTP
	if s.mode == ModeChat {
		httpCfg = s.cfg.ChatHTTP()
	}

	var (
		errChans []chan error
		closers  []func()
	)
	shutdown := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	srv := newHTTPServer(httpCfg, s.handler)
	httpErrs, _, httpGraceful, err := utils.ListenHTTP(srv, s.log)
	if err != nil {
		return err
	}
	errChans = append(errChans, httpErrs)
	closers = append(closers, httpGraceful)

	if s.cfg.Metrics.ExposeMetrics {
		metricErrs, _, metricGraceful, err := s.metrics.Listen(s.cfg.Metrics.Port)
		if err != nil {
			shutdown()
			return fmt.Errorf("failed to start metrics listener: %w", err)
		}
		errChans = append(errChans, metricErrs)
		closers = append(closers, metricGraceful)
	}

	if s.cfg.Health.GRPCPort > 0 {
		grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(s.log.GrpcRequestsInterceptor, s.metrics.GrpcRequestsInterceptor))
		reporter := s.health.RegisterWithGRPC(grpcServer, s.cfg.Health.UpdateInterval, s.cfg.ServiceName)
		grpcErrs, _, grpcGraceful, err := utils.ListenGRPC(grpcServer, s.cfg.Health.GRPCPort, s.log)
		if err != nil {
			shutdown()
			return fmt.Errorf("failed to start gRPC health server: %w", err)
		}
		go reporter.Run(ctx)
		errChans = append(errChans, grpcErrs)
		closers = append(closers, grpcGraceful)
	}

	s.log.Info("Server started", logger.StringField("address", httpCfg.Addr()))

	errs := utils.MergeErrorChans(errChans...)
	select {
	case <-ctx.Done():
		s.log.Info("Shutting down")
		cancel()
		shutdown()
		return nil
	case err, ok := <-errs:
		cancel()
		shutdown()
		if !ok {
			return nil
		}
		return fmt.Errorf("listener failed: %w", err)
	}
}

func newHTTPServer(cfg pkgconfig.HTTPServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout(),
		ReadHeaderTimeout: cfg.ReadTimeout(),
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       cfg.IdleTimeout(),
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

func (s *Server) middlewareConfig() httpmiddleware.Config {
	mw := httpmiddleware.DefaultConfig()
	mw.Logger = s.log
	mw.EnableLogging = true
	mw.Timeout = s.cfg.Security.RequestTimeout
	mw.MaxBodyBytes = s.cfg.Security.MaxRequestSize
	mw.Metrics = s.metrics.HTTPMiddleware()
	if s.cfg.Security.StripPrefix != "" {
		mw.StripPrefix = s.cfg.Security.StripPrefix
		mw.EnableStripPrefix = true
	}
	cors := httpmiddleware.DefaultCORSConfig()
	cors.AllowedOrigins = s.cfg.Security.CORSAllowedOrigins
	mw.CORS = &cors
	return mw
}

// createHealthChecker probes the selected provider's API for readiness.
func (s *Server) createHealthChecker() *health.HealthChecker {
	hc := health.New(
		health.WithTimeout(s.cfg.Health.CheckTimeout),
		health.WithFailureThreshold(s.cfg.Health.FailureThreshold),
		health.WithLogger(s.log.WithFields(logger.StringField("component", "health"))),
	)
	if s.cfg.Health.DisableUpstreamCheck {
		return hc
	}
	provider := strings.ToLower(s.cfg.LLM.Provider)
	endpoint := checkers.ProviderEndpoint(provider)
	if endpoint == "" || (provider == appconfig.ProviderGemini && s.cfg.Gemini.UseVertexAI) {
		return hc
	}
	hc.AddReadinessCheck(checkers.NewHTTPChecker(endpoint, provider+"_api", &http.Client{Timeout: s.cfg.Health.CheckTimeout}))
	return hc
}

// ErrShutdownTimeout is returned by RunWithTimeout when listeners did not stop in time.
var ErrShutdownTimeout = errors.New("shutdown timed out")

// RunWithTimeout runs the server and, once ctx is done, allows grace for the
// listeners to drain.
func (s *Server) RunWithTimeout(ctx context.Context, grace time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	select {
	case err := <-done:
		return err
	case <-time.After(grace):
		s.log.Warn("Force exiting due to timeout", logger.DurationField("grace", grace))
		return ErrShutdownTimeout
	}
}
