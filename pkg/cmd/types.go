package cmd

import (
	"context"
	"fmt"

	"github.com/pseudomuto/projectx/pkg/report"
	"github.com/urfave/cli/v3"
)

// typesCmd creates a CLI command listing the engine, project and platform
// types available to the project, built-in and discovered from installed
// plugin packages. The configured identifier of each category is marked
// with an asterisk.
//
// Example usage:
//
//	projectx types
//	projectx types --category engine
func typesCmd(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "types",
		Usage: "List the available engine, project and platform types",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "category",
				Usage: "only list one category (engine, project or platform)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var typ, eng, plat string
			if cfg := rt.Project().Config(); cfg != nil {
				typ, eng, plat = cfg.Type, cfg.Engine, cfg.Platform
			}

			categories := []report.Category{
				report.Types(rt.engines, eng),
				report.Types(rt.frameworks, typ),
				report.Types(rt.platforms, plat),
			}

			only := cmd.String("category")
			for _, c := range categories {
				if only != "" && only != c.Name {
					continue
				}

				rows := make([][]string, len(c.Types))
				for i, t := range c.Types {
					id := t.ID
					if t.Selected {
						id += " *"
					}
					rows[i] = []string{id, t.Label, t.Classname}
				}

				fmt.Fprintln(rt.Stdout, c.Name)
				printTable(rt.Stdout, []string{"Identifier", "Label", "Class"}, rows)
			}

			return nil
		},
	}
}
