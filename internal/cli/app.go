// Package cli implements the adk-webui command line.
package cli

import (
	"github.com/urfave/cli/v2"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

// NewApp returns the adk-webui application.
func NewApp(version string) *cli.App {
	return &cli.App{
		Name:    serviceName,
		Usage:   "Web front-ends over a single ADK agent",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "config-file",
				Value:   "",
				Usage:   "Path to configuration file",
				EnvVars: []string{"CONFIG_FILE"},
			},
			&cli.StringFlag{
				Name:    "env-file",
				Value:   ".env",
				Usage:   "Path to a .env file loaded before configuration",
				EnvVars: []string{"ENV_FILE"},
			},
		},
		Before: func(ctx *cli.Context) error {
			if err := loadEnvFile(ctx.String("env-file"), ctx.IsSet("env-file")); err != nil {
				return err
			}

			log := logger.NewLogger(logger.Config{
				Level:   logger.ParseLevel(ctx.String("log-level")),
				Format:  "json",
				Service: serviceName,
			})
			ctx.App.Metadata = map[string]interface{}{
				"logger": log,
			}
			return nil
		},
		Commands: []*cli.Command{
			APICommand(),
			ChatCommand(),
			ConfigCommand(),
			HealthCommand(),
		},
	}
}
