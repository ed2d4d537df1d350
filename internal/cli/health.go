package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthCommand probes a running server, for container health checks.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Probe a running server's health endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Value: "http://127.0.0.1:8000/health",
				Usage: "HTTP health endpoint to probe",
			},
			&cli.StringFlag{
				Name:  "grpc",
				Usage: "gRPC health address (host:port); probes gRPC instead of HTTP when set",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 5 * time.Second,
				Usage: "Probe timeout",
			},
		},
		Action: healthAction,
	}
}

func healthAction(ctx *cli.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx.Context, ctx.Duration("timeout"))
	defer cancel()

	var (
		status string
		err    error
	)
	if addr := ctx.String("grpc"); addr != "" {
		status, err = probeGRPC(probeCtx, addr)
	} else {
		status, err = probeHTTP(probeCtx, ctx.String("url"))
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("unhealthy: %v", err), 1)
	}
	fmt.Fprintln(ctx.App.Writer, status)
	return nil
}

func probeHTTP(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("invalid health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d (%s)", resp.StatusCode, body.Status)
	}
	return body.Status, nil
}

func probeGRPC(ctx context.Context, addr string) (string, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return "", fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	defer conn.Close()

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		return "", fmt.Errorf("health check failed: %w", err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return "", fmt.Errorf("status %s", resp.GetStatus())
	}
	return resp.GetStatus().String(), nil
}
