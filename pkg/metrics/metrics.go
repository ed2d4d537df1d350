// Package metrics provides Prometheus metrics for HTTP requests, gRPC calls
// and agent invocations.
package metrics

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/lewisedginton/adk_webui/pkg/logger"
	"github.com/lewisedginton/adk_webui/pkg/utils"
)

const (
	subsystem = "adk_webui"
)

var durationBuckets = []float64{0.1, 0.3, 0.5, 0.7, 1.0, 3.0, 5.0, 7.0, 10.0, 30.0, 60.0}

// Agent call outcome indices for AgentCallCounters.
const (
	AgentCallTotal = iota
	AgentCallSuccess
	AgentCallFailed
	AgentCallShortCircuited
)

// Metrics holds the service collectors on a private registry. All methods are
// safe on a nil *Metrics, which records nothing.
type Metrics struct {
	reg *prometheus.Registry

	TotalHTTPRequestsCounter prometheus.Counter
	HTTPResponsesCounter     *prometheus.CounterVec
	HTTPDurationHistogram    prometheus.Histogram

	GrpcRequestsCounter   *prometheus.CounterVec
	GrpcDurationHistogram prometheus.Histogram

	AgentCallCounters      map[int]prometheus.Counter
	AgentDurationHistogram prometheus.Histogram

	log logger.Logger
}

// NewMetrics creates a Metrics instance. HTTP collectors are only registered
// when httpCounters is set; agent and gRPC collectors are always present.
func NewMetrics(httpCounters bool, l logger.Logger) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		log: l,
	}
	if httpCounters {
		m.TotalHTTPRequestsCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "total_http_requests",
			Help:      "Total HTTP requests",
		})
		m.HTTPResponsesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "http_responses_total",
			Help:      "HTTP responses by status code",
		}, []string{"code"})
		m.HTTPDurationHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   durationBuckets,
		})
		m.reg.MustRegister(m.TotalHTTPRequestsCounter, m.HTTPResponsesCounter, m.HTTPDurationHistogram)
	}

	m.GrpcRequestsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "grpc_requests_total",
		Help:      "gRPC requests by method and status code",
	}, []string{"method", "code"})
	m.GrpcDurationHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Subsystem: subsystem,
		Name:      "grpc_request_duration_seconds",
		Help:      "gRPC request duration in seconds",
		Buckets:   durationBuckets,
	})
	m.reg.MustRegister(m.GrpcRequestsCounter, m.GrpcDurationHistogram)

	m.AgentCallCounters = getAgentCallCounters()
	for k := range m.AgentCallCounters {
		m.reg.MustRegister(m.AgentCallCounters[k])
	}
	m.AgentDurationHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Subsystem: subsystem,
		Name:      "agent_call_duration_seconds",
		Help:      "Agent call duration in seconds",
		Buckets:   durationBuckets,
	})
	m.reg.MustRegister(m.AgentDurationHistogram)

	return m
}

func getAgentCallCounters() map[int]prometheus.Counter {
	m := make(map[int]prometheus.Counter)
	m[AgentCallTotal] = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "total_queries_handled",
		Help:      "Total queries handled",
	})
	m[AgentCallSuccess] = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "total_agent_calls_successful",
		Help:      "Agent calls that returned a reply",
	})
	m[AgentCallFailed] = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "total_agent_calls_failed",
		Help:      "Agent calls that returned an error",
	})
	m[AgentCallShortCircuited] = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "total_queries_blank",
		Help:      "Blank queries answered without calling the agent",
	})
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Listen starts the metrics HTTP server on the specified port.
func (m *Metrics) Listen(port int) (chan error, func(), func(), error) {
	m.log.Info("Starting metrics listener", logger.IntField("port", port))
	mux := http.NewServeMux()
	mux.Handle("/", http.NotFoundHandler())
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return utils.ListenHTTP(server, m.log)
}

// IncrementAgentCall bumps one of the AgentCall* counters.
func (m *Metrics) IncrementAgentCall(kind int) {
	if m == nil {
		return
	}
	if c, ok := m.AgentCallCounters[kind]; ok {
		c.Inc()
	}
}

// ObserveAgentDuration records how long one agent call took.
func (m *Metrics) ObserveAgentDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.AgentDurationHistogram.Observe(d.Seconds())
}

// GrpcRequestsInterceptor implements gRPC unary interceptor interface
// Note: interface{} usage required by gRPC library signature
func (m *Metrics) GrpcRequestsInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if m != nil {
		m.GrpcDurationHistogram.Observe(time.Since(start).Seconds())
		m.GrpcRequestsCounter.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	}
	return resp, err
}

// HTTPMiddleware returns a Chi-compatible middleware that tracks HTTP metrics.
// It is a pass-through when HTTP metrics are disabled.
func (m *Metrics) HTTPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil || m.TotalHTTPRequestsCounter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.TotalHTTPRequestsCounter.Inc()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			m.HTTPDurationHistogram.Observe(time.Since(start).Seconds())
			m.HTTPResponsesCounter.WithLabelValues(strconv.Itoa(rw.statusCode)).Inc()
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Hijack lets websocket upgrades pass through the middleware.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}
