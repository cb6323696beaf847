package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/config"
	"github.com/pseudomuto/projectx/pkg/consts"
	"github.com/pseudomuto/projectx/pkg/framework"
	"github.com/urfave/cli/v3"
)

var invalidNameChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// initCmd creates a CLI command for writing the project configuration.
//
// The command writes project-x.yml in the project directory from its flags or,
// with --interactive, from a short form. An existing configuration is never
// overwritten.
//
// Example usage:
//
//	projectx init --name acme --type drupal --engine docker
//	projectx init --interactive
func initCmd(rt *Runtime) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new projectx project",
		Description: `Writes project-x.yml for the project in the current (or --dir) directory.
If the file already exists it is left untouched and only validated.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "the project machine name",
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "the project type",
				Value: framework.DrupalID,
			},
			&cli.StringFlag{
				Name:  "engine",
				Usage: "the environment engine",
				Value: "docker",
			},
			&cli.StringFlag{
				Name:  "platform",
				Usage: "the deployment platform",
				Value: "git",
			},
			&cli.StringFlag{
				Name:  "version",
				Usage: "the project type version",
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "the web document root",
				Value: consts.DefaultDocRoot,
			},
			&cli.StringFlag{
				Name:  "github",
				Usage: "the GitHub repository URL",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "prompt for the project settings",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			proj := rt.Project()

			cfg := &config.Config{
				Name:     cmd.String("name"),
				Type:     cmd.String("type"),
				Engine:   cmd.String("engine"),
				Platform: cmd.String("platform"),
				Version:  cmd.String("version"),
				Root:     cmd.String("root"),
				Github:   config.Github{URL: cmd.String("github")},
			}

			if cfg.Name == "" {
				cfg.Name = machineName(filepath.Base(proj.Root()))
			}

			if cmd.Bool("interactive") {
				if err := prompt(ctx, rt, cfg); err != nil {
					return err
				}
			}

			if cfg.Version == "" {
				cfg.Version = defaultVersion(cfg.Type)
			}

			if err := proj.Initialize(cfg); err != nil {
				return errors.Wrap(err, "failed to initialize project")
			}

			fmt.Fprintf(rt.Stdout, "Initialized %s project %s in %s\n", proj.Config().Type, proj.Name(), proj.Root())
			return nil
		},
	}
}

func prompt(ctx context.Context, rt *Runtime, cfg *config.Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Value(&cfg.Name).
				Validate(func(s string) error {
					if machineName(s) != s || s == "" {
						return errors.New("use lowercase letters, digits, dashes and underscores")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Project type").
				Options(options(rt.frameworks.Options())...).
				Value(&cfg.Type),
			huh.NewSelect[string]().
				Title("Environment engine").
				Options(options(rt.engines.Options())...).
				Value(&cfg.Engine),
			huh.NewSelect[string]().
				Title("Deployment platform").
				Options(options(rt.platforms.Options())...).
				Value(&cfg.Platform),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Version").
				Placeholder(defaultVersion(cfg.Type)).
				Value(&cfg.Version),
			huh.NewInput().
				Title("GitHub repository URL").
				Value(&cfg.Github.URL),
		),
	)

	return errors.Wrap(form.RunWithContext(ctx), "failed to read project settings")
}

// options converts identifier → label pairs to select options sorted by label.
func options(labels map[string]string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(labels))
	for id, label := range labels {
		opts = append(opts, huh.NewOption(label, id))
	}

	sort.Slice(opts, func(i, j int) bool { return opts[i].Key < opts[j].Key })
	return opts
}

func defaultVersion(typ string) string {
	switch typ {
	case framework.DrupalID:
		return framework.DefaultDrupalVersion
	case framework.PHPID:
		return framework.DefaultPHPVersion
	default:
		return ""
	}
}

func machineName(s string) string {
	name := invalidNameChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(name, "-_")
}
