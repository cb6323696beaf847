package executor

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type (
	// ExecCommandFunc creates the exec.Cmd for a task. It allows tests to
	// substitute the binaries that get run.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Task is a single external command invocation.
	Task struct {
		// Name identifies the task in results and errors. Defaults to the command line.
		Name string

		// Command is the binary to run
		Command string

		// Args are passed to Command
		Args []string

		// Dir is the working directory. Defaults to the current directory.
		Dir string

		// Env is appended to the current process environment
		Env []string

		// Stdin, Stdout and Stderr override the runner's streams when set
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Config contains configuration options for creating a new Runner.
	Config struct {
		// ExecCommand creates commands. Defaults to exec.CommandContext.
		ExecCommand ExecCommandFunc

		// Stdout and Stderr receive command output. Default to the process streams.
		Stdout io.Writer
		Stderr io.Writer

		// DryRun logs tasks instead of running them
		DryRun bool
	}

	// Runner executes tasks.
	Runner struct {
		execCommand ExecCommandFunc
		stdout      io.Writer
		stderr      io.Writer
		dryRun      bool
	}

	// ExecutionResult contains the result of running a single task.
	ExecutionResult struct {
		// Task is the name of the task that was run
		Task string

		// Status indicates the outcome of the task
		Status ExecutionStatus

		// ExitCode is the process exit code (-1 when the process never started)
		ExitCode int

		// Error contains any error that occurred during execution
		Error error

		// ExecutionTime records how long the task took
		ExecutionTime time.Duration
	}

	// ExecutionStatus represents the outcome of a task.
	ExecutionStatus string

	// CommandError is returned when a command exits with a non-zero status.
	CommandError struct {
		Task     string
		ExitCode int
	}
)

const (
	// StatusSuccess indicates the task exited with status zero
	StatusSuccess ExecutionStatus = "success"

	// StatusFailed indicates the task failed to start or exited non-zero
	StatusFailed ExecutionStatus = "failed"

	// StatusSkipped indicates the task was not run (dry run)
	StatusSkipped ExecutionStatus = "skipped"
)

func (e *CommandError) Error() string {
	return e.Task + ": exit status " + strconv.Itoa(e.ExitCode)
}

// New creates a Runner with the provided configuration.
func New(config Config) *Runner {
	r := &Runner{
		execCommand: config.ExecCommand,
		stdout:      config.Stdout,
		stderr:      config.Stderr,
		dryRun:      config.DryRun,
	}

	if r.execCommand == nil {
		r.execCommand = exec.CommandContext
	}

	if r.stdout == nil {
		r.stdout = os.Stdout
	}

	if r.stderr == nil {
		r.stderr = os.Stderr
	}

	return r
}

// String returns the task's command line.
func (t Task) String() string {
	return strings.TrimSpace(t.Command + " " + strings.Join(t.Args, " "))
}

func (t Task) name() string {
	if t.Name != "" {
		return t.Name
	}

	return t.String()
}

// Run executes a single task. A non-zero exit returns a *CommandError alongside
// the failed result.
func (r *Runner) Run(ctx context.Context, task Task) (*ExecutionResult, error) {
	result := &ExecutionResult{Task: task.name()}

	if r.dryRun {
		slog.Info("Dry run", "task", result.Task, "command", task.String(), "dir", task.Dir)
		result.Status = StatusSkipped
		return result, nil
	}

	cmd := r.execCommand(ctx, task.Command, task.Args...)
	cmd.Dir = task.Dir
	cmd.Stdin = task.Stdin
	cmd.Stdout = firstWriter(task.Stdout, r.stdout)
	cmd.Stderr = firstWriter(task.Stderr, r.stderr)
	if len(task.Env) > 0 {
		cmd.Env = append(os.Environ(), task.Env...)
	}

	slog.Debug("Running command", "task", result.Task, "command", task.String(), "dir", task.Dir)

	start := time.Now()
	err := cmd.Run()
	result.ExecutionTime = time.Since(start)

	if err == nil {
		result.Status = StatusSuccess
		return result, nil
	}

	result.Status = StatusFailed
	result.ExitCode = -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		result.Error = &CommandError{Task: result.Task, ExitCode: result.ExitCode}
	} else {
		result.Error = errors.Wrapf(err, "failed to run %s", result.Task)
	}

	return result, result.Error
}

// RunAll executes tasks in order and stops at the first failure. Results for
// every attempted task are returned.
func (r *Runner) RunAll(ctx context.Context, tasks ...Task) ([]*ExecutionResult, error) {
	results := make([]*ExecutionResult, 0, len(tasks))
	for _, task := range tasks {
		result, err := r.Run(ctx, task)
		results = append(results, result)

		if err != nil {
			return results, err
		}
	}

	return results, nil
}

// Output runs a task and returns its trimmed standard output.
func (r *Runner) Output(ctx context.Context, task Task) (string, error) {
	var buf bytes.Buffer
	task.Stdout = &buf

	if _, err := r.Run(ctx, task); err != nil {
		return "", err
	}

	return strings.TrimSpace(buf.String()), nil
}

// LookPath reports whether a binary is available on the PATH.
func LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func firstWriter(ws ...io.Writer) io.Writer {
	for _, w := range ws {
		if w != nil {
			return w
		}
	}

	return io.Discard
}
