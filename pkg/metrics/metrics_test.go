package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

func testLogger() logger.Logger {
	return logger.NewLogger(logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func TestHTTPMiddleware(t *testing.T) {
	m := NewMetrics(true, testLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := m.HTTPMiddleware()(mux)

	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, 4.0, testutil.ToFloat64(m.TotalHTTPRequestsCounter))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.HTTPResponsesCounter.WithLabelValues("200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPResponsesCounter.WithLabelValues("404")))
}

func TestHTTPMiddlewareDisabled(t *testing.T) {
	m := NewMetrics(false, testLogger())
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	m.HTTPMiddleware()(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)

	var nilMetrics *Metrics
	called = false
	nilMetrics.HTTPMiddleware()(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestAgentCallCounters(t *testing.T) {
	m := NewMetrics(false, testLogger())

	m.IncrementAgentCall(AgentCallTotal)
	m.IncrementAgentCall(AgentCallTotal)
	m.IncrementAgentCall(AgentCallSuccess)
	m.IncrementAgentCall(AgentCallShortCircuited)
	m.IncrementAgentCall(99)
	m.ObserveAgentDuration(150 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AgentCallCounters[AgentCallTotal]))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AgentCallCounters[AgentCallSuccess]))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.AgentCallCounters[AgentCallFailed]))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AgentCallCounters[AgentCallShortCircuited]))
	assert.Equal(t, 1, testutil.CollectAndCount(m.AgentDurationHistogram))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.IncrementAgentCall(AgentCallTotal)
		nilMetrics.ObserveAgentDuration(time.Second)
	})
}

func TestGrpcRequestsInterceptor(t *testing.T) {
	m := NewMetrics(false, testLogger())
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	_, err := m.GrpcRequestsInterceptor(context.Background(), nil, info,
		func(context.Context, interface{}) (interface{}, error) { return "ok", nil })
	require.NoError(t, err)

	_, err = m.GrpcRequestsInterceptor(context.Background(), nil, info,
		func(context.Context, interface{}) (interface{}, error) {
			return nil, status.Error(codes.Unavailable, "down")
		})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GrpcRequestsCounter.WithLabelValues(info.FullMethod, "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GrpcRequestsCounter.WithLabelValues(info.FullMethod, "Unavailable")))
}

func TestHandlerExposition(t *testing.T) {
	m := NewMetrics(true, testLogger())
	m.IncrementAgentCall(AgentCallFailed)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "adk_webui_total_agent_calls_failed 1"), body)
	assert.Contains(t, body, "adk_webui_http_request_duration_seconds")
}

func TestResponseWriterUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec}
	assert.Same(t, rec, rw.Unwrap())
}
