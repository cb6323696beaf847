package composer

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/pseudomuto/projectx/pkg/docker"
	"github.com/pseudomuto/projectx/pkg/executor"
)

// Image is used when composer is not installed on the host.
const Image = "composer:2"

type (
	// ToolFunc runs a tool container.
	ToolFunc func(ctx context.Context, opts docker.ToolOptions) (*docker.ToolResult, error)

	// RunnerParams configures a Runner.
	RunnerParams struct {
		// Dir is the directory composer runs in
		Dir string

		Exec *executor.Runner

		// LookPath reports whether a binary exists. Defaults to executor.LookPath.
		LookPath func(string) bool

		// Tool runs the container fallback. Defaults to docker.RunTool.
		Tool ToolFunc

		// Stdout receives the container output
		Stdout io.Writer
	}

	// Runner runs composer commands.
	Runner struct {
		params RunnerParams
	}
)

// NewRunner creates a Runner.
func NewRunner(p RunnerParams) *Runner {
	if p.Exec == nil {
		p.Exec = executor.New(executor.Config{})
	}

	if p.LookPath == nil {
		p.LookPath = executor.LookPath
	}

	if p.Tool == nil {
		p.Tool = docker.RunTool
	}

	if p.Stdout == nil {
		p.Stdout = os.Stdout
	}

	return &Runner{params: p}
}

// Run executes composer with args. Without a host composer binary the command
// runs in the composer image with Dir mounted.
func (r *Runner) Run(ctx context.Context, args ...string) error {
	task := executor.Task{
		Name:    "composer " + first(args),
		Command: "composer",
		Args:    args,
		Dir:     r.params.Dir,
	}

	if r.params.LookPath("composer") {
		_, err := r.params.Exec.Run(ctx, task)
		return err
	}

	slog.Info("composer not found, running in container", "image", Image, "args", args)
	res, err := r.params.Tool(ctx, docker.ToolOptions{
		Image:   Image,
		Cmd:     append([]string{"composer"}, args...),
		HostDir: r.params.Dir,
	})
	if err != nil {
		return err
	}

	_, _ = io.WriteString(r.params.Stdout, res.Output)
	if res.ExitCode != 0 {
		return &executor.CommandError{Task: task.Name, ExitCode: res.ExitCode}
	}

	return nil
}

// Install runs composer install.
func (r *Runner) Install(ctx context.Context) error {
	return r.Run(ctx, "install", "--no-interaction")
}

// Update runs composer update, optionally for specific packages.
func (r *Runner) Update(ctx context.Context, packages ...string) error {
	return r.Run(ctx, append([]string{"update", "--no-interaction", "--with-all-dependencies"}, packages...)...)
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}

	return args[0]
}
