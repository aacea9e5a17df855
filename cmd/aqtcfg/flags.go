package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

var (
	configFile   string
	logLevel     string
	logFormat    string
	outputFormat string
	debug        bool
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Value:       defaultConfigPath(),
			Sources:     cli.EnvVars("AQTCFG_CONFIG"),
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (auto, pretty, json, text)",
			Value:       "auto",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "shorthand for --log-level=debug",
			Destination: &debug,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"o"},
			Usage:       "output format (text, json, yaml)",
			Value:       "text",
			Destination: &outputFormat,
		},
	}
}

// bitsFlag declares an optional bit width. An empty value or "none" leaves
// the operand unquantized.
func bitsFlag(name, value, usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  name,
		Usage: usage + ` (integer >= 1, or "none")`,
		Value: value,
	}
}

func parseBits(name, s string) (*int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "none" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, errors.Errorf("--%s: invalid bit width %q", name, s)
	}
	return &n, nil
}

func bitsFromFlag(cmd *cli.Command, name string) (*int, error) {
	return parseBits(name, cmd.String(name))
}

// optionalInt returns nil unless the flag was given explicitly.
func optionalInt(cmd *cli.Command, name string) *int {
	if !cmd.IsSet(name) {
		return nil
	}
	n := int(cmd.Int64(name))
	return &n
}

func optionalBool(cmd *cli.Command, name string) *bool {
	if !cmd.IsSet(name) {
		return nil
	}
	b := cmd.Bool(name)
	return &b
}
