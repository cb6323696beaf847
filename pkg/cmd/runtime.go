package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/cache"
	"github.com/pseudomuto/projectx/pkg/composer"
	"github.com/pseudomuto/projectx/pkg/config"
	"github.com/pseudomuto/projectx/pkg/consts"
	"github.com/pseudomuto/projectx/pkg/docker"
	"github.com/pseudomuto/projectx/pkg/engine"
	"github.com/pseudomuto/projectx/pkg/executor"
	"github.com/pseudomuto/projectx/pkg/framework"
	"github.com/pseudomuto/projectx/pkg/hooks"
	"github.com/pseudomuto/projectx/pkg/platform"
	"github.com/pseudomuto/projectx/pkg/plugin"
	"github.com/pseudomuto/projectx/pkg/project"
	"github.com/pseudomuto/projectx/pkg/types"
	"github.com/urfave/cli/v3"
)

// Runtime is the state shared by all commands. The root command's Before hook
// calls Load once the project directory is known; commands read from it in
// their actions.
type Runtime struct {
	// Stdout receives command output
	Stdout io.Writer

	// Exec runs external commands. Defaults to an executor writing to Stdout.
	Exec *executor.Runner

	// Cache stores plugin discovery results. Defaults to the user cache dir.
	Cache cache.Backend

	// DockerClient overrides the Docker SDK client used for engine status.
	DockerClient func() (docker.DockerClient, error)

	// Tool overrides the disposable container runner used by composer.
	Tool composer.ToolFunc

	// Dispatch runs command hooks. Defaults to re-executing the binary.
	Dispatch hooks.Dispatcher

	// GithubURL overrides the GitHub API endpoint
	GithubURL string

	project    *project.Project
	loader     *plugin.Loader
	engines    *types.Resolver[engine.Engine]
	frameworks *types.Resolver[framework.Framework]
	platforms  *types.Resolver[platform.Platform]
}

func newRuntime() *Runtime {
	return &Runtime{Stdout: os.Stdout}
}

// Load builds the project context for dir. A missing configuration file is
// not an error; commands that need one guard with requireProject.
func (r *Runtime) Load(dir string) error {
	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}

	if r.Exec == nil {
		r.Exec = executor.New(executor.Config{Stdout: r.Stdout})
	}

	if r.Cache == nil {
		r.Cache = defaultCache()
	}

	cfg, err := config.Load(dir)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return err
	}

	r.project = project.New(project.ProjectParams{Dir: dir, Config: cfg})
	r.loader = plugin.NewLoader(plugin.LoaderParams{
		VendorDir: r.project.VendorDir(),
		Cache:     r.Cache,
	})

	r.engines = engine.NewResolver(r.project, r.loader, engine.Deps{
		Runner:       r.Exec,
		DockerClient: r.DockerClient,
	})
	r.frameworks = framework.NewResolver(r.project, r.loader, framework.Deps{
		Engine:   r.Engine,
		Composer: r.Composer,
	})
	r.platforms = platform.NewResolver(r.project, r.loader)

	return nil
}

// Project returns the loaded project.
func (r *Runtime) Project() *project.Project {
	return r.project
}

// Engine creates the configured environment engine.
func (r *Runtime) Engine() (engine.Engine, error) {
	return engine.Create(r.engines)
}

// Framework creates the configured project type.
func (r *Runtime) Framework() (framework.Framework, error) {
	return framework.Create(r.frameworks)
}

// Platform creates the configured deployment platform.
func (r *Runtime) Platform() (platform.Platform, error) {
	return platform.Create(r.platforms)
}

// Composer returns a composer runner for dir.
func (r *Runtime) Composer(dir string) *composer.Runner {
	return composer.NewRunner(composer.RunnerParams{
		Dir:    dir,
		Exec:   r.Exec,
		Tool:   r.Tool,
		Stdout: r.Stdout,
	})
}

// Hooks parses the configured command hooks.
func (r *Runtime) Hooks() (hooks.Registry, error) {
	cfg := r.project.Config()
	if cfg == nil {
		return hooks.Registry{}, nil
	}

	return hooks.Parse(cfg.CommandHooks)
}

// wrap runs fn between the before and after hooks of command/action.
func (r *Runtime) wrap(ctx context.Context, command, action string, fn func() error) error {
	reg, err := r.Hooks()
	if err != nil {
		return err
	}

	runner := hooks.NewRunner(hooks.RunnerParams{
		Dir:      r.project.Root(),
		Dispatch: r.dispatch,
		Stdout:   r.Stdout,
	})

	return runner.Wrap(ctx, reg, command, action, fn)
}

func (r *Runtime) dispatch(ctx context.Context, args []string) error {
	if r.Dispatch != nil {
		return r.Dispatch(ctx, args)
	}

	exe, err := os.Executable()
	if err != nil {
		return errors.Wrap(err, "failed to locate projectx executable")
	}

	_, err = r.Exec.Run(ctx, executor.Task{
		Name:    "projectx " + args[0],
		Command: exe,
		Args:    args,
		Dir:     r.project.Root(),
	})
	return err
}

func defaultCache() cache.Backend {
	dir, err := cache.DefaultDir()
	if err != nil {
		slog.Debug("Using in-memory cache", "err", err)
		return cache.NewMemory()
	}

	return cache.NewFile(dir)
}

func requireProject(rt *Runtime) func(context.Context, *cli.Command) (context.Context, error) {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if rt.project == nil || !rt.project.Initialized() {
			return ctx, errors.Wrapf(config.ErrConfigNotFound, "%s not found, run projectx init first", consts.ConfigFile)
		}

		return ctx, nil
	}
}
