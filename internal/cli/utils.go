package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	appconfig "github.com/lewisedginton/adk_webui/internal/config"
	"github.com/lewisedginton/adk_webui/pkg/config"
	"github.com/lewisedginton/adk_webui/pkg/logger"
)

const serviceName = "adk-webui"

// getLogger retrieves the logger from the CLI context metadata
func getLogger(ctx *cli.Context) logger.Logger {
	if ctx.App.Metadata != nil {
		if log, ok := ctx.App.Metadata["logger"].(logger.Logger); ok {
			return log
		}
	}

	return logger.NewLogger(logger.Config{
		Level:   logger.InfoLevel,
		Format:  "json",
		Service: serviceName,
	})
}

// loadEnvFile seeds the environment from path. A missing default file is not
// an error; a missing file the user asked for is.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

// loadConfig reads the app config from the optional YAML file and the
// environment, then validates it. The --log-level flag wins over LOG_LEVEL.
func loadConfig(ctx *cli.Context) (*appconfig.AppConfig, error) {
	cfg := &appconfig.AppConfig{}
	if err := config.GetConfig(cfg, ctx.String("config-file"), false); err != nil {
		return nil, err
	}
	if ctx.IsSet("log-level") {
		cfg.Logging.Level = ctx.String("log-level")
	}
	return cfg, nil
}

// configuredLogger builds the command logger from the loaded config and stores
// it for later lookups.
func configuredLogger(ctx *cli.Context, cfg *appconfig.AppConfig) logger.Logger {
	log := logger.NewLogger(logger.Config{
		Level:   cfg.GetLogLevel(),
		Format:  cfg.Logging.Format,
		Service: cfg.ServiceName,
	}).WithFields(logger.StringField("version", cfg.Version))
	if ctx.App.Metadata == nil {
		ctx.App.Metadata = map[string]interface{}{}
	}
	ctx.App.Metadata["logger"] = log
	return log
}
