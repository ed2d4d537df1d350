package health

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func startGRPC(t *testing.T, h *HealthChecker, services ...string) (grpc_health_v1.HealthClient, *GRPCReporter) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := grpc.NewServer()
	reporter := h.RegisterWithGRPC(server, 10*time.Millisecond, services...)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return grpc_health_v1.NewHealthClient(conn), reporter
}

func servingStatus(t *testing.T, client grpc_health_v1.HealthClient, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.Status
}

func TestGRPCReporter(t *testing.T) {
	check := &mockCheck{name: "upstream"}
	h := New(WithFailureThreshold(1))
	h.AddReadinessCheck(check)

	client, reporter := startGRPC(t, h, "adk_webui")
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, servingStatus(t, client, ""))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reporter.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return servingStatus(t, client, "adk_webui") == grpc_health_v1.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)

	check.setErr(errors.New("down"))
	assert.Eventually(t, func() bool {
		return servingStatus(t, client, "") == grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reporter did not stop")
	}
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, servingStatus(t, client, ""))
}
