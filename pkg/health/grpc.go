package health

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

// DefaultGRPCUpdateInterval is how often readiness is re-evaluated for gRPC clients.
const DefaultGRPCUpdateInterval = 5 * time.Second

// GRPCReporter mirrors readiness into a grpc.health.v1.Health server.
type GRPCReporter struct {
	checker      *HealthChecker
	healthServer *health.Server
	services     []string
	interval     time.Duration
}

// RegisterWithGRPC registers grpc.health.v1.Health on server. Status is
// published for the overall server ("") and for every name in services.
// Everything starts NOT_SERVING until Run performs its first readiness check.
func (h *HealthChecker) RegisterWithGRPC(server *grpc.Server, interval time.Duration, services ...string) *GRPCReporter {
	if interval <= 0 {
		interval = DefaultGRPCUpdateInterval
	}
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, hs)

	r := &GRPCReporter{
		checker:      h,
		healthServer: hs,
		services:     append([]string{""}, services...),
		interval:     interval,
	}
	r.set(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return r
}

// Run updates the published status until ctx is done, then marks everything
// NOT_SERVING so clients drain before the listener closes.
func (r *GRPCReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.update(ctx)
	for {
		select {
		case <-ticker.C:
			r.update(ctx)
		case <-ctx.Done():
			r.healthServer.Shutdown()
			r.checker.log().Info("gRPC health reporter stopped")
			return
		}
	}
}

func (r *GRPCReporter) update(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()

	status, err := r.checker.CheckReadiness(ctx)
	if err != nil || !status.Healthy {
		r.set(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		r.checker.log().Debug("gRPC health status: NOT_SERVING", logger.ErrorField(err))
		return
	}
	r.set(grpc_health_v1.HealthCheckResponse_SERVING)
}

func (r *GRPCReporter) set(s grpc_health_v1.HealthCheckResponse_ServingStatus) {
	for _, svc := range r.services {
		r.healthServer.SetServingStatus(svc, s)
	}
}
