package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/framework"
	"github.com/urfave/cli/v3"
)

// projectCmd creates the project type command group.
//
// Subcommands:
//   - setup: Generate the project files (composer.json, settings, aliases)
//   - install: Install the project into the running environment
//
// Example usage:
//
//	projectx project setup --new
//	projectx project setup --existing
//	projectx project install --profile minimal
func projectCmd(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:   "project",
		Usage:  "Set up and install the project",
		Before: requireProject(rt),
		Commands: []*cli.Command{
			{
				Name:  "setup",
				Usage: "Generate the project files",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "new",
						Usage: "set up a new project (default)",
					},
					&cli.BoolFlag{
						Name:  "existing",
						Usage: "set up an existing project without generating composer.json",
					},
					&cli.BoolFlag{
						Name:  "skip-composer",
						Usage: "do not run composer install",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Bool("new") && cmd.Bool("existing") {
						return errors.New("--new and --existing are mutually exclusive")
					}

					fw, err := rt.Framework()
					if err != nil {
						return err
					}

					opts := framework.SetupOptions{
						Existing:     cmd.Bool("existing"),
						SkipComposer: cmd.Bool("skip-composer"),
					}

					return rt.wrap(ctx, "project", "setup", func() error {
						return fw.Setup(ctx, opts)
					})
				},
			},
			{
				Name:  "install",
				Usage: "Install the project into the environment",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "profile",
						Usage: "override the configured install profile",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fw, err := rt.Framework()
					if err != nil {
						return err
					}

					return rt.wrap(ctx, "project", "install", func() error {
						return fw.Install(ctx, framework.InstallOptions{Profile: cmd.String("profile")})
					})
				},
			},
		},
	}
}
