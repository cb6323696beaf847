package docker

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/pkg/errors"
)

const (
	// ProjectLabel is set by docker compose on every container of a project
	ProjectLabel = "com.docker.compose.project"

	// ServiceLabel names the compose service a container belongs to
	ServiceLabel = "com.docker.compose.service"

	// StateRunning is the state of a started container
	StateRunning = "running"
)

type (
	// DockerClient defines the interface for Docker operations used by the Engine.
	// This interface is satisfied by *client.Client and allows for easy mocking in tests.
	DockerClient interface {
		ImagePull(context.Context, string, image.PullOptions) (io.ReadCloser, error)
		ContainerList(context.Context, container.ListOptions) ([]container.Summary, error)
		ContainerInspect(context.Context, string) (container.InspectResponse, error)
		Close() error
	}

	Engine struct {
		client DockerClient
	}

	// Container is the status of a single project container.
	Container struct {
		ID      string
		Name    string
		Service string
		Image   string
		State   string
		Status  string
	}
)

// NewClient connects to the daemon configured in the environment (DOCKER_HOST
// and friends).
func NewClient() (*client.Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create docker client")
	}

	return cli, nil
}

// NewEngine creates a new Docker Engine instance for managing Docker operations.
// The Docker client should be initialized and connected before passing to this constructor.
func NewEngine(cl DockerClient) *Engine {
	return &Engine{
		client: cl,
	}
}

// Close releases the underlying client.
func (e *Engine) Close() error {
	return e.client.Close()
}

// Pull fetches an image, writing the daemon's progress stream to w.
func (e *Engine) Pull(ctx context.Context, img string, w io.Writer) error {
	out, err := e.client.ImagePull(ctx, img, image.PullOptions{})
	if err != nil {
		return errors.Wrapf(err, "failed to pull image: %s", img)
	}

	defer func() { _ = out.Close() }()
	if w == nil {
		w = io.Discard
	}

	_, err = io.Copy(w, out)
	return errors.Wrapf(err, "failed to read pull progress: %s", img)
}

// ProjectContainers lists every container, running or not, of the given
// compose project ordered by service name.
func (e *Engine) ProjectContainers(ctx context.Context, project string) ([]*Container, error) {
	list, err := e.client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", ProjectLabel+"="+project)),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list containers for project: %s", project)
	}

	res := make([]*Container, len(list))
	for i, c := range list {
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}

		res[i] = &Container{
			ID:      c.ID,
			Name:    name,
			Service: c.Labels[ServiceLabel],
			Image:   c.Image,
			State:   string(c.State),
			Status:  c.Status,
		}
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].Service != res[j].Service {
			return res[i].Service < res[j].Service
		}
		return res[i].Name < res[j].Name
	})

	return res, nil
}

// Running reports whether every container of the project is running. A
// project without containers is not running.
func (e *Engine) Running(ctx context.Context, project string) (bool, error) {
	containers, err := e.ProjectContainers(ctx, project)
	if err != nil {
		return false, err
	}

	for _, c := range containers {
		if c.State != StateRunning {
			return false, nil
		}
	}

	return len(containers) > 0, nil
}

// Get inspects a single container.
func (e *Engine) Get(ctx context.Context, nameOrID string) (*Container, error) {
	inspect, err := e.client.ContainerInspect(ctx, nameOrID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to inspect container: %s", nameOrID)
	}

	res := &Container{
		ID:   inspect.ID,
		Name: strings.TrimPrefix(inspect.Name, "/"),
	}

	if inspect.Config != nil {
		res.Image = inspect.Config.Image
		res.Service = inspect.Config.Labels[ServiceLabel]
	}

	if inspect.State != nil {
		res.State = string(inspect.State.Status)
		res.Status = string(inspect.State.Status)
	}

	return res, nil
}
