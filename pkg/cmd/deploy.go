package cmd

import (
	"context"
	"fmt"

	"github.com/pseudomuto/projectx/pkg/deploy"
	"github.com/pseudomuto/projectx/pkg/platform"
	"github.com/urfave/cli/v3"
)

// deployCmd creates the deployment command group.
//
// The build subcommand copies the project into the build directory (see
// options.deploy) and prepares it with the project type. With --push the
// build is published through the configured platform.
//
// Example usage:
//
//	projectx deploy build
//	projectx deploy build --push --tag 1.2.0 --message "Release 1.2.0"
func deployCmd(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:   "deploy",
		Usage:  "Build and deploy the project",
		Before: requireProject(rt),
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Create a production build",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "push",
						Usage: "publish the build through the deployment platform",
					},
					&cli.StringFlag{
						Name:  "tag",
						Usage: "tag the deployed revision",
					},
					&cli.StringFlag{
						Name:    "message",
						Aliases: []string{"m"},
						Usage:   "the build commit message",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "commit the build without publishing it",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fw, err := rt.Framework()
					if err != nil {
						return err
					}

					params := deploy.BuilderParams{Project: rt.Project(), Framework: fw}
					if !cmd.Bool("push") {
						builder, err := deploy.NewBuilder(params)
						if err != nil {
							return err
						}

						return rt.wrap(ctx, "deploy", "build", func() error {
							dir, err := builder.Build(ctx)
							if err != nil {
								return err
							}

							fmt.Fprintln(rt.Stdout, "Build created in", dir)
							return nil
						})
					}

					if params.Platform, err = rt.Platform(); err != nil {
						return err
					}

					builder, err := deploy.NewBuilder(params)
					if err != nil {
						return err
					}

					opts := platform.DeployOptions{
						Message: cmd.String("message"),
						Tag:     cmd.String("tag"),
						DryRun:  cmd.Bool("dry-run"),
					}

					return rt.wrap(ctx, "deploy", "push", func() error {
						res, err := builder.Deploy(ctx, opts)
						if err != nil {
							return err
						}

						printResult(rt, res)
						return nil
					})
				},
			},
		},
	}
}

func printResult(rt *Runtime, res *platform.Result) {
	if res.Revision == "" {
		fmt.Fprintln(rt.Stdout, "Nothing was deployed")
		return
	}

	if !res.Pushed {
		fmt.Fprintf(rt.Stdout, "Committed %s on %s (not pushed)\n", res.Revision, res.Branch)
		return
	}

	fmt.Fprintf(rt.Stdout, "Deployed %s to %s (%s)\n", res.Revision, res.Remote, res.Branch)
}
