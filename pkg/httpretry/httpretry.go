// Package httpretry provides an http.RoundTripper that retries transient
// upstream failures with exponential backoff.
//
// It is handed to model SDK clients so that retry policy lives in the
// client configuration and request handlers make exactly one call.
package httpretry

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

// Config describes the retry policy.
type Config struct {
	// Attempts is the total number of tries, including the first one.
	Attempts     int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	// Jitter is the backoff randomization factor in [0, 1].
	Jitter      float64
	StatusCodes []int
}

// DefaultConfig retries rate limiting and server errors five times, starting
// at one second and growing sevenfold.
func DefaultConfig() Config {
	return Config{
		Attempts:     5,
		InitialDelay: time.Second,
		Multiplier:   7,
		MaxDelay:     60 * time.Second,
		Jitter:       0.5,
		StatusCodes: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// Validate rejects policies that would never make a request or never back off.
func (c Config) Validate() error {
	if c.Attempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.Attempts)
	}
	if c.InitialDelay < 0 || c.MaxDelay < 0 {
		return errors.New("retry delays must not be negative")
	}
	if c.Multiplier < 1 {
		return fmt.Errorf("retry multiplier must be at least 1, got %v", c.Multiplier)
	}
	if c.Jitter < 0 || c.Jitter > 1 {
		return fmt.Errorf("retry jitter must be within [0, 1], got %v", c.Jitter)
	}
	return nil
}

// Transport wraps a base RoundTripper with retries.
type Transport struct {
	Base   http.RoundTripper
	config Config
	log    logger.Logger
}

// New wraps base (http.DefaultTransport when nil).
func New(base http.RoundTripper, config Config, log logger.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Transport{Base: base, config: config, log: log}
}

// NewClient returns an *http.Client using a retrying Transport.
// Timeouts are left to the request context.
func NewClient(config Config, log logger.Logger) *http.Client {
	return &http.Client{Transport: New(nil, config, log)}
}

// statusError marks a response whose status code is retryable.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("retryable upstream status %d", e.code)
}

func (t *Transport) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.config.InitialDelay
	b.Multiplier = t.config.Multiplier
	b.RandomizationFactor = t.config.Jitter
	if t.config.MaxDelay > 0 {
		b.MaxInterval = t.config.MaxDelay
	}
	return b
}

// RoundTrip implements http.RoundTripper. The final attempt's response is
// returned as-is even when its status is retryable, so callers see the real
// upstream error body.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	attempts := t.config.Attempts
	if attempts < 1 {
		attempts = 1
	}
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		// Body cannot be replayed.
		attempts = 1
	}

	ctx := req.Context()
	try := 0
	operation := func() (*http.Response, error) {
		try++
		attemptReq, err := rewind(req, try)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		resp, err := t.Base.RoundTrip(attemptReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if !slices.Contains(t.config.StatusCodes, resp.StatusCode) {
			return resp, nil
		}
		if try >= attempts {
			return resp, &statusError{code: resp.StatusCode}
		}

		retryAfter, hasRetryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		drain(resp)
		if hasRetryAfter {
			if maxSecs := int(t.config.MaxDelay / time.Second); t.config.MaxDelay > 0 && retryAfter > maxSecs {
				retryAfter = maxSecs
			}
			return nil, backoff.RetryAfter(retryAfter)
		}
		return nil, &statusError{code: resp.StatusCode}
	}

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(t.newBackOff()),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			t.log.Warn("Retrying upstream request",
				logger.StringField("host", req.URL.Host),
				logger.IntField("attempt", try),
				logger.DurationField("backoff", next),
				logger.ErrorField(err))
		}),
	)

	var se *statusError
	if resp != nil && errors.As(err, &se) {
		return resp, nil
	}
	if err != nil && resp != nil {
		drain(resp)
		resp = nil
	}
	return resp, err
}

// rewind returns the request to send on the given try. The first try reuses
// req; later tries get a fresh body from GetBody.
func rewind(req *http.Request, try int) (*http.Request, error) {
	if try == 1 || req.GetBody == nil {
		return req, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewinding request body: %w", err)
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}

// parseRetryAfter understands the delta-seconds and HTTP-date forms.
func parseRetryAfter(v string) (int, bool) {
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return secs, true
	}
	if at, err := http.ParseTime(v); err == nil {
		secs := int(time.Until(at).Round(time.Second) / time.Second)
		if secs < 0 {
			secs = 0
		}
		return secs, true
	}
	return 0, false
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

var _ http.RoundTripper = (*Transport)(nil)
