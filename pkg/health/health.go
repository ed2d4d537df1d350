// Package health runs liveness and readiness checks and reports them over HTTP
// and the gRPC health protocol.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

// Check is a single probe that can succeed or fail.
type Check interface {
	Name() string
	// Check returns nil when healthy.
	Check(ctx context.Context) error
}

// CheckFunc adapts a plain function to Check.
type CheckFunc struct {
	name string
	fn   func(context.Context) error
}

// NewCheckFunc creates a new CheckFunc with the given name and function.
func NewCheckFunc(name string, fn func(context.Context) error) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

func (c *CheckFunc) Name() string { return c.name }

func (c *CheckFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// CheckResult is the outcome of one check execution.
type CheckResult struct {
	Name    string
	Healthy bool
	Error   string
	Latency time.Duration
}

// HealthStatus aggregates a set of check results.
type HealthStatus struct {
	Healthy bool
	Checks  []CheckResult
}

// HealthChecker owns the liveness and readiness check lists.
//
// A failing check only turns a probe unhealthy after failureThreshold
// consecutive failures, so a single slow upstream response does not flap
// readiness.
type HealthChecker struct {
	livenessChecks   []Check
	readinessChecks  []Check
	timeout          time.Duration
	failureCount     map[string]int
	failureThreshold int
	logger           logger.Logger
	mu               sync.RWMutex
}

// Option configures a HealthChecker.
type Option func(*HealthChecker)

// WithTimeout sets the per-check timeout. Default is 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(h *HealthChecker) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithLogger sets the logger for health check operations.
func WithLogger(l logger.Logger) Option {
	return func(h *HealthChecker) {
		h.logger = l
	}
}

// WithFailureThreshold sets the consecutive failures needed before a check
// reports unhealthy. Default is 3.
func WithFailureThreshold(threshold int) Option {
	return func(h *HealthChecker) {
		if threshold > 0 {
			h.failureThreshold = threshold
		}
	}
}

// New creates a HealthChecker.
func New(opts ...Option) *HealthChecker {
	h := &HealthChecker{
		timeout:          5 * time.Second,
		failureThreshold: 3,
		failureCount:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddLivenessCheck registers a check that decides whether the process should be restarted.
func (h *HealthChecker) AddLivenessCheck(check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.livenessChecks = append(h.livenessChecks, check)
}

// AddReadinessCheck registers a check that decides whether traffic should be sent here.
func (h *HealthChecker) AddReadinessCheck(check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readinessChecks = append(h.readinessChecks, check)
}

// CheckLiveness runs all liveness checks.
func (h *HealthChecker) CheckLiveness(ctx context.Context) (*HealthStatus, error) {
	h.mu.RLock()
	checks := h.livenessChecks
	h.mu.RUnlock()
	return h.executeChecks(ctx, checks)
}

// CheckReadiness runs all readiness checks.
func (h *HealthChecker) CheckReadiness(ctx context.Context) (*HealthStatus, error) {
	h.mu.RLock()
	checks := h.readinessChecks
	h.mu.RUnlock()
	return h.executeChecks(ctx, checks)
}

func (h *HealthChecker) executeChecks(ctx context.Context, checks []Check) (*HealthStatus, error) {
	status := &HealthStatus{Healthy: true, Checks: make([]CheckResult, len(checks))}
	if len(checks) == 0 {
		return status, nil
	}

	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(idx int, chk Check) {
			defer wg.Done()
			status.Checks[idx] = h.executeCheck(ctx, chk)
		}(i, check)
	}
	wg.Wait()

	var failed []string
	for _, result := range status.Checks {
		if !result.Healthy {
			status.Healthy = false
			failed = append(failed, result.Name)
		}
	}
	if !status.Healthy {
		return status, fmt.Errorf("health checks failed: %v", failed)
	}
	return status, nil
}

func (h *HealthChecker) executeCheck(parentCtx context.Context, check Check) CheckResult {
	ctx, cancel := context.WithTimeout(parentCtx, h.timeout)
	defer cancel()

	start := time.Now()
	err := check.Check(ctx)
	result := CheckResult{Name: check.Name(), Latency: time.Since(start), Healthy: true}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err == nil {
		h.failureCount[result.Name] = 0
		h.log().Debug("Health check passed",
			logger.StringField("check", result.Name),
			logger.DurationField("latency", result.Latency))
		return result
	}

	h.failureCount[result.Name]++
	failures := h.failureCount[result.Name]
	fields := []logger.LogField{
		logger.StringField("check", result.Name),
		logger.ErrorField(err),
		logger.IntField("failures", failures),
	}
	if failures < h.failureThreshold {
		h.log().Debug("Health check failed but below threshold",
			append(fields, logger.IntField("threshold", h.failureThreshold))...)
		return result
	}

	result.Healthy = false
	result.Error = err.Error()
	h.log().Warn("Health check failed", append(fields, logger.DurationField("latency", result.Latency))...)
	return result
}

func (h *HealthChecker) log() logger.Logger {
	if h.logger == nil {
		return logger.Nop()
	}
	return h.logger
}
