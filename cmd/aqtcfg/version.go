package main

import (
	"context"

	"github.com/samcharles93/aqt/internal/version"
	"github.com/urfave/cli/v3"
)

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return render(stdout, outputFormat, version.Resolve())
		},
	}
}
