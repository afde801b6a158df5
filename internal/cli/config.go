package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/logging"
)

// options holds values shared by every command.
type options struct {
	configPath string
	logLevel   string
	dbPath     string
}

// globalFlags returns common flags used across commands with destination options
func globalFlags(o *options) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML configuration file",
			Sources:     cli.EnvVars("MUDRA_CONFIG"),
			Destination: &o.configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Sources:     cli.EnvVars("MUDRA_LOG_LEVEL"),
			Destination: &o.logLevel,
		},
	}
}

// storeFlags returns the SQLite archive location flag.
func storeFlags(o *options) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db",
			Usage:       "Path to the SQLite history archive (empty disables archiving)",
			Sources:     cli.EnvVars("MUDRA_DB"),
			Destination: &o.dbPath,
		},
	}
}

// load builds the configuration from defaults, the config file and flags,
// in increasing precedence.
func (o *options) load(c *cli.Command) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.IsSet("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if c.IsSet("db") {
		cfg.Store.Path = o.dbPath
	}

	if err := cfg.Validate(); err != nil {
		return cfg, goerr.Wrap(err, "invalid command line options")
	}
	return cfg, nil
}

// setupLogger installs the configured logger as default and attaches it to ctx.
func setupLogger(ctx context.Context, c *cli.Command, cfg config.Config) (context.Context, *slog.Logger) {
	logger := logging.New(cfg.Log.Level, c.Root().ErrWriter)
	logging.SetDefault(logger)
	return logging.With(ctx, logger), logger
}
