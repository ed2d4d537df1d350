package httpretry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	c := DefaultConfig()
	c.Attempts = attempts
	c.InitialDelay = time.Millisecond
	c.MaxDelay = 5 * time.Millisecond
	c.Jitter = 0
	return c
}

// flaky answers with codes in order, then 200 with the request body echoed.
func flaky(t *testing.T, codes ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1))
		body, _ := io.ReadAll(r.Body)
		if n <= len(codes) {
			w.WriteHeader(codes[n-1])
			_, _ = w.Write([]byte("failure"))
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestRetriesRetryableStatus(t *testing.T) {
	srv, calls := flaky(t, http.StatusServiceUnavailable, http.StatusTooManyRequests)
	client := NewClient(fastConfig(5), nil)

	resp, err := client.Post(srv.URL, "application/json", strings.NewReader(`{"prompt":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"prompt":"hi"}`, string(body), "body must be replayed on each attempt")
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoesNotRetryOtherStatus(t *testing.T) {
	srv, calls := flaky(t, http.StatusBadRequest)
	resp, err := NewClient(fastConfig(5), nil).Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestReturnsLastResponseWhenExhausted(t *testing.T) {
	srv, calls := flaky(t, 500, 500, 500, 500)
	resp, err := NewClient(fastConfig(3), nil).Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "failure", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSingleAttemptDisablesRetry(t *testing.T) {
	srv, calls := flaky(t, http.StatusGatewayTimeout)
	resp, err := NewClient(fastConfig(1), nil).Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHonoursRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := fastConfig(2)
	cfg.InitialDelay = time.Hour
	cfg.MaxDelay = time.Hour

	start := time.Now()
	resp, err := NewClient(cfg, nil).Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestStopsOnContextCancel(t *testing.T) {
	srv, calls := flaky(t, 503, 503, 503, 503, 503)
	cfg := fastConfig(5)
	cfg.InitialDelay = time.Hour
	cfg.MaxDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = NewClient(cfg, nil).Do(req)
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetriesTransportErrors(t *testing.T) {
	var calls atomic.Int32
	base := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if calls.Add(1) < 3 {
			return nil, io.ErrUnexpectedEOF
		}
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "http://upstream.invalid/", nil)
	resp, err := New(base, fastConfig(5), nil).RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.Attempts = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Multiplier = 0.5
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Jitter = 2
	assert.Error(t, bad.Validate())
}

func TestParseRetryAfter(t *testing.T) {
	secs, ok := parseRetryAfter("7")
	assert.True(t, ok)
	assert.Equal(t, 7, secs)

	_, ok = parseRetryAfter("")
	assert.False(t, ok)

	_, ok = parseRetryAfter("soon")
	assert.False(t, ok)

	secs, ok = parseRetryAfter(time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat))
	assert.True(t, ok)
	assert.Equal(t, 0, secs)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
