package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/engine"
	"github.com/urfave/cli/v3"
)

// engineCmd creates the environment engine command group.
//
// Every lifecycle subcommand runs the command_hooks configured for
// engine.<action> around the engine operation.
//
// Example usage:
//
//	projectx engine install
//	projectx engine up
//	projectx engine exec php -- php -v
//	projectx engine status
func engineCmd(rt *Runtime) *cli.Command {
	lifecycle := []struct {
		name  string
		usage string
		run   func(engine.Engine, context.Context) error
	}{
		{"install", "Write the environment files and start the environment", engine.Engine.Install},
		{"up", "Create and start the environment", engine.Engine.Up},
		{"down", "Stop and remove the environment", engine.Engine.Down},
		{"start", "Start the stopped environment", engine.Engine.Start},
		{"stop", "Stop the environment", engine.Engine.Stop},
		{"restart", "Restart the environment", engine.Engine.Restart},
		{"rebuild", "Rebuild and recreate the environment", engine.Engine.Rebuild},
	}

	commands := make([]*cli.Command, 0, len(lifecycle)+2)
	for _, op := range lifecycle {
		commands = append(commands, &cli.Command{
			Name:  op.name,
			Usage: op.usage,
			Action: func(ctx context.Context, cmd *cli.Command) error {
				eng, err := rt.Engine()
				if err != nil {
					return err
				}

				return rt.wrap(ctx, "engine", op.name, func() error {
					return op.run(eng, ctx)
				})
			},
		})
	}

	commands = append(commands,
		&cli.Command{
			Name:      "exec",
			Usage:     "Run a command in an environment service",
			ArgsUsage: "<service> <command> [args...]",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				if cmd.Args().Len() < 2 {
					return errors.New("a service and a command are required")
				}

				eng, err := rt.Engine()
				if err != nil {
					return err
				}

				args := cmd.Args().Slice()
				return eng.Exec(ctx, args[0], args[1:]...)
			},
		},
		&cli.Command{
			Name:  "status",
			Usage: "Show the environment services",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				eng, err := rt.Engine()
				if err != nil {
					return err
				}

				services, err := eng.Status(ctx)
				if err != nil {
					return err
				}

				if len(services) == 0 {
					fmt.Fprintln(rt.Stdout, "No services running")
					return nil
				}

				rows := make([][]string, len(services))
				for i, s := range services {
					rows[i] = []string{s.Service, s.Name, s.Image, s.State, s.Status}
				}

				printTable(rt.Stdout, []string{"Service", "Container", "Image", "State", "Status"}, rows)
				return nil
			},
		},
	)

	return &cli.Command{
		Name:     "engine",
		Aliases:  []string{"env"},
		Usage:    "Manage the local environment engine",
		Before:   requireProject(rt),
		Commands: commands,
	}
}
