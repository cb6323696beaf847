package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/pseudomuto/projectx/pkg/cache"
	"github.com/pseudomuto/projectx/pkg/docker"
	"github.com/pseudomuto/projectx/pkg/executor"
	"github.com/stretchr/testify/require"
)

// recorder captures external commands, composer container runs and command
// hook dispatches instead of running them.
type recorder struct {
	calls      [][]string
	dispatched [][]string
}

func (r *recorder) command(ctx context.Context, name string, arg ...string) *exec.Cmd {
	r.calls = append(r.calls, append([]string{name}, arg...))
	return exec.CommandContext(ctx, "true")
}

func (r *recorder) tool(_ context.Context, opts docker.ToolOptions) (*docker.ToolResult, error) {
	r.calls = append(r.calls, opts.Cmd)
	return &docker.ToolResult{}, nil
}

func (r *recorder) dispatch(_ context.Context, args []string) error {
	r.dispatched = append(r.dispatched, args)
	return nil
}

type fakeDockerClient struct {
	containers []container.Summary
}

func (f *fakeDockerClient) ImagePull(context.Context, string, image.PullOptions) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *fakeDockerClient) ContainerList(context.Context, container.ListOptions) ([]container.Summary, error) {
	return f.containers, nil
}

func (f *fakeDockerClient) ContainerInspect(context.Context, string) (container.InspectResponse, error) {
	return container.InspectResponse{}, nil
}

func (f *fakeDockerClient) Close() error { return nil }

// testRuntime builds a Runtime for dir whose side effects are recorded.
func testRuntime(t *testing.T, dir string) (*Runtime, *recorder, *bytes.Buffer) {
	t.Helper()

	rec := &recorder{}
	out := new(bytes.Buffer)

	rt := &Runtime{
		Stdout: out,
		Exec: executor.New(executor.Config{
			ExecCommand: rec.command,
			Stdout:      io.Discard,
			Stderr:      io.Discard,
		}),
		Cache:    cache.NewMemory(),
		Tool:     rec.tool,
		Dispatch: rec.dispatch,
		DockerClient: func() (docker.DockerClient, error) {
			var php container.Summary
			raw := `{"Id":"1","Names":["/acme-php-1"],"Image":"php:8.2-fpm","State":"running","Status":"Up 2 minutes","Labels":{"com.docker.compose.service":"php"}}`
			if err := json.Unmarshal([]byte(raw), &php); err != nil {
				return nil, err
			}

			return &fakeDockerClient{containers: []container.Summary{php}}, nil
		},
	}

	require.NoError(t, rt.Load(dir))
	return rt, rec, out
}
