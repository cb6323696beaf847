package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pseudomuto/projectx/pkg/report"
	"github.com/urfave/cli/v3"
)

// reportCmd creates a CLI command summarizing the project: its configuration,
// the available types of every category, remote environments, command hooks
// and task runner commands.
//
// Example usage:
//
//	projectx report
//	projectx report --services
//	projectx report --raw > REPORT.md
func reportCmd(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:   "report",
		Usage:  "Show a project report",
		Before: requireProject(rt),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "print markdown instead of rendering it",
			},
			&cli.BoolFlag{
				Name:  "services",
				Usage: "include the environment services",
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "wrap the rendered report at this width",
				Value: 100,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, err := reportData(ctx, rt, cmd.Bool("services"))
			if err != nil {
				return err
			}

			md, err := report.Markdown(data)
			if err != nil {
				return err
			}

			if cmd.Bool("raw") {
				fmt.Fprint(rt.Stdout, md)
				return nil
			}

			out, err := report.Render(md, int(cmd.Int("width")))
			if err != nil {
				return err
			}

			fmt.Fprint(rt.Stdout, out)
			return nil
		},
	}
}

func reportData(ctx context.Context, rt *Runtime, services bool) (report.Data, error) {
	proj := rt.Project()
	cfg := proj.Config()

	data := report.Data{
		Project: proj,
		Categories: []report.Category{
			report.Types(rt.frameworks, cfg.Type),
			report.Types(rt.engines, cfg.Engine),
			report.Types(rt.platforms, cfg.Platform),
		},
	}

	reg, err := rt.Hooks()
	if err != nil {
		return data, err
	}
	data.Hooks = reg

	if data.Tasks, err = proj.Tasks(); err != nil {
		return data, err
	}

	if services {
		eng, err := rt.Engine()
		if err != nil {
			return data, err
		}

		// an unreachable engine still yields a report
		if data.Services, err = eng.Status(ctx); err != nil {
			slog.Warn("Failed to read environment status", "err", err)
		}
	}

	return data, nil
}
