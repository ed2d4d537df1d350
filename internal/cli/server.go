package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/lewisedginton/adk_webui/internal/server"
	"github.com/lewisedginton/adk_webui/pkg/logger"
)

// shutdownGrace bounds how long listeners may drain after a signal.
const shutdownGrace = 30 * time.Second

// APICommand serves POST /query and GET /health.
func APICommand() *cli.Command {
	return &cli.Command{
		Name:    "api",
		Aliases: []string{"a"},
		Usage:   "Start the JSON API server",
		Action: func(ctx *cli.Context) error {
			return runServer(ctx, server.ModeAPI)
		},
	}
}

// ChatCommand serves the interactive prompt page.
func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Start the interactive chat page",
		Action: func(ctx *cli.Context) error {
			return runServer(ctx, server.ModeChat)
		},
	}
}

func runServer(ctx *cli.Context, mode server.Mode) error {
	log := getLogger(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		log.Error("Failed to load config", logger.ErrorField(err))
		return fmt.Errorf("failed to load config: %w", err)
	}
	log = configuredLogger(ctx, cfg)
	cfg.LogConfig(log)

	runCtx, cancel := context.WithCancel(ctx.Context)
	defer cancel()

	s, err := server.New(runCtx, cfg, mode, log)
	if err != nil {
		log.Error("Failed to create server", logger.ErrorField(err))
		return fmt.Errorf("failed to create server: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			log.Info("Received shutdown signal", logger.StringField("signal", sig.String()))
			cancel()
		case <-runCtx.Done():
		}
	}()

	if err := s.RunWithTimeout(runCtx, shutdownGrace); err != nil {
		log.Error("Fatal server error occurred", logger.ErrorField(err))
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("Server exited gracefully")
	return nil
}
