package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Logger     *log.Logger `optional:"true"`
		Runtime    *Runtime
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run creates and executes the projectx CLI application with the given
// version and command-line arguments.
//
// Global Flags:
//   - --dir, -d: Project directory (defaults to current directory)
//   - --verbose: Enable debug logging
//
// The root command changes into the project directory and loads project-x.yml
// (plus project-x.local.yml) when present. Commands that need a configured
// project fail with config.ErrConfigNotFound otherwise.
//
// Example usage:
//
//	projectx --dir /path/to/site engine up
//	projectx types
func Run(p Params) {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", p.Version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", p.Version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", p.Version.Timestamp)
	}

	app := &cli.Command{
		Name:  "projectx",
		Usage: "Scaffold, run and deploy PHP and Drupal projects",
		Description: `projectx manages the lifecycle of PHP projects: it writes the project
configuration, provisions a local environment engine, sets up and installs the
project type and deploys production builds. Engine, project and platform types
can be extended by composer packages of type project-x-plugin.`,
		Version: p.Version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "the project directory",
				Value:       ".",
				DefaultText: "Current directory",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("PROJECTX_VERBOSE"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") && p.Logger != nil {
				p.Logger.SetLevel(log.DebugLevel)
			}

			if err := os.Chdir(cmd.String("dir")); err != nil {
				return ctx, err
			}

			pwd, err := os.Getwd()
			if err != nil {
				return ctx, errors.Wrap(err, "failed to get current working directory")
			}

			return ctx, p.Runtime.Load(pwd)
		},
		Commands: p.Commands,
	}

	p.Lifecycle.Append(fx.StartHook(func() {
		if err := app.Run(p.Ctx, p.Args); err != nil {
			slog.Error("Error running command", "err", err)
			_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
		}

		_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
	}))
}
