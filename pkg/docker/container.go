package docker

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/pkg/errors"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// ToolWorkDir is where the host directory is mounted inside tool containers
	ToolWorkDir = "/app"

	defaultToolTimeout = 10 * time.Minute
)

type (
	// ToolOptions describes a one-shot tool container.
	ToolOptions struct {
		// Image to run, e.g. composer:2
		Image string

		// Cmd is the container command
		Cmd []string

		// HostDir is mounted read-write at ToolWorkDir (relative paths are
		// converted to absolute)
		HostDir string

		Env map[string]string

		// Timeout bounds the run. Defaults to 10 minutes.
		Timeout time.Duration
	}

	// ToolResult is the outcome of a tool container run.
	ToolResult struct {
		ExitCode int
		Output   string
	}
)

// RunTool starts a container, waits for it to exit, collects its logs and
// removes it.
//
// Example:
//
//	res, err := docker.RunTool(ctx, docker.ToolOptions{
//		Image:   "composer:2",
//		Cmd:     []string{"composer", "install"},
//		HostDir: "/path/to/project",
//	})
func RunTool(ctx context.Context, opts ToolOptions) (*ToolResult, error) {
	if opts.Image == "" {
		return nil, errors.New("tool image is required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}

	req := testcontainers.ContainerRequest{
		Image:      opts.Image,
		Cmd:        opts.Cmd,
		Env:        opts.Env,
		WorkingDir: ToolWorkDir,
		WaitingFor: wait.ForExit().WithExitTimeout(timeout),
	}

	if opts.HostDir != "" {
		hostDir, err := filepath.Abs(opts.HostDir)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get absolute path for HostDir: %s", opts.HostDir)
		}

		req.HostConfigModifier = func(hostConfig *container.HostConfig) {
			hostConfig.Mounts = []mount.Mount{
				{
					Type:   mount.TypeBind,
					Source: hostDir,
					Target: ToolWorkDir,
				},
			}
		}
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to run tool container: %s", opts.Image)
	}
	defer func() { _ = c.Terminate(context.WithoutCancel(ctx)) }()

	state, err := c.State(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get tool container state")
	}

	logs, err := c.Logs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read tool container logs")
	}
	defer func() { _ = logs.Close() }()

	var out bytes.Buffer
	if _, err := io.Copy(&out, logs); err != nil {
		return nil, errors.Wrap(err, "failed to read tool container logs")
	}

	return &ToolResult{ExitCode: state.ExitCode, Output: out.String()}, nil
}
