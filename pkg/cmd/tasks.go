package cmd

import (
	"context"
	"fmt"

	"github.com/pseudomuto/projectx/pkg/project"
	"github.com/urfave/cli/v3"
)

// tasksCmd creates the task runner command group.
//
// Subcommands:
//   - generate: Write the RoboFile.php scaffold and the tasks/ directory
//   - list: List the commands declared by RoboFile.php and tasks/*.php
//
// Example usage:
//
//	projectx tasks generate
//	projectx tasks list
func tasksCmd(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:   "tasks",
		Usage:  "Manage the project task runner",
		Before: requireProject(rt),
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate the task runner scaffold",
				Flags: []cli.Flag{overwriteFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					written, err := rt.Project().GenerateTasks(project.ScaffoldOptions{Overwrite: cmd.Bool("overwrite")})
					if err != nil {
						return err
					}

					printWritten(rt, written)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List the task runner commands",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					tasks, err := rt.Project().Tasks()
					if err != nil {
						return err
					}

					if len(tasks) == 0 {
						fmt.Fprintln(rt.Stdout, "No tasks found")
						return nil
					}

					rows := make([][]string, len(tasks))
					for i, task := range tasks {
						rows[i] = []string{task.Name, task.Method, task.Class}
					}

					printTable(rt.Stdout, []string{"Command", "Method", "Class"}, rows)
					return nil
				},
			},
		},
	}
}

// ciCmd creates the CI scaffold command group.
//
// Example usage:
//
//	projectx ci generate --overwrite
func ciCmd(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:   "ci",
		Usage:  "Manage the project CI workflow",
		Before: requireProject(rt),
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate the CI workflow",
				Flags: []cli.Flag{overwriteFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					written, err := rt.Project().GenerateCI(project.ScaffoldOptions{Overwrite: cmd.Bool("overwrite")})
					if err != nil {
						return err
					}

					printWritten(rt, written)
					return nil
				},
			},
		},
	}
}

func overwriteFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "overwrite",
		Usage: "replace existing files",
	}
}

func printWritten(rt *Runtime, files []string) {
	if len(files) == 0 {
		fmt.Fprintln(rt.Stdout, "Nothing to write, files already exist (use --overwrite to replace them)")
		return
	}

	for _, f := range files {
		fmt.Fprintln(rt.Stdout, "Wrote", f)
	}
}
