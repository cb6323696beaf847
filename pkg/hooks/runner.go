package hooks

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/executor"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

type (
	// Dispatcher runs a projectx command given its CLI arguments.
	Dispatcher func(ctx context.Context, args []string) error

	// RunnerParams configures a Runner.
	RunnerParams struct {
		// Dir is the working directory of shell hooks
		Dir string

		// Dispatch runs command hooks. Command hooks fail without it.
		Dispatch Dispatcher

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer

		// Env is appended to the process environment for shell hooks
		Env []string
	}

	// Runner executes hooks.
	Runner struct {
		params RunnerParams
	}
)

// NewRunner creates a Runner.
func NewRunner(p RunnerParams) *Runner {
	if p.Stdout == nil {
		p.Stdout = os.Stdout
	}

	if p.Stderr == nil {
		p.Stderr = os.Stderr
	}

	return &Runner{params: p}
}

// Run executes hooks in order and stops at the first failure. A shell hook
// exiting non-zero fails with an *executor.CommandError.
func (r *Runner) Run(ctx context.Context, hooks []Hook) error {
	for _, hook := range hooks {
		slog.Info("Running hook", "type", hook.Type, "command", hook.String())

		var err error
		switch hook.Type {
		case TypeCommand:
			err = r.dispatch(ctx, hook)
		default:
			err = r.shell(ctx, hook.Command)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) dispatch(ctx context.Context, hook Hook) error {
	if r.params.Dispatch == nil {
		return errors.Errorf("no dispatcher for command hook %q", hook.Command)
	}

	return errors.Wrapf(r.params.Dispatch(ctx, hook.Args()), "hook %q failed", hook.String())
}

func (r *Runner) shell(ctx context.Context, script string) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "hook")
	if err != nil {
		return errors.Wrapf(err, "failed to parse hook %q", script)
	}

	runner, err := interp.New(
		interp.Dir(r.params.Dir),
		interp.Env(expand.ListEnviron(append(os.Environ(), r.params.Env...)...)),
		interp.StdIO(r.params.Stdin, r.params.Stdout, r.params.Stderr),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create interpreter")
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &executor.CommandError{Task: script, ExitCode: int(exitStatus)}
		}
		return errors.Wrapf(err, "hook %q failed", script)
	}

	return nil
}

// Wrap runs the before hooks of command/action, then fn, then the after hooks.
// After hooks are skipped when fn fails.
func (r *Runner) Wrap(ctx context.Context, reg Registry, command, action string, fn func() error) error {
	hooks := reg.Lookup(command, action)

	if err := r.Run(ctx, hooks.Before); err != nil {
		return err
	}

	if err := fn(); err != nil {
		return err
	}

	return r.Run(ctx, hooks.After)
}
