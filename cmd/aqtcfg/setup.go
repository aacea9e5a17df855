package main

import (
	"context"
	"os"

	"github.com/samcharles93/aqt/internal/logger"
	"github.com/urfave/cli/v3"
)

type configKey struct{}

// setup loads the config file, applies it under explicit flags and installs
// the logger in the command context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return ctx, err
	}
	applyGlobalConfig(cmd, cfg)

	if debug {
		logLevel = "debug"
	}
	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return ctx, err
	}
	log, err := logger.ForFormat(os.Stderr, logFormat, level, stderrIsTTY())
	if err != nil {
		return ctx, err
	}
	log.Debug("configuration loaded", "path", configFile)

	ctx = logger.WithContext(ctx, log)
	return context.WithValue(ctx, configKey{}, cfg), nil
}

func applyGlobalConfig(cmd *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !cmd.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !cmd.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
	if cfg.Format != "" && !cmd.IsSet("format") {
		outputFormat = cfg.Format
	}
}

func configFromContext(ctx context.Context) Config {
	cfg, _ := ctx.Value(configKey{}).(Config)
	return cfg
}
