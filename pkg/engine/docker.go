package engine

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/consts"
	"github.com/pseudomuto/projectx/pkg/docker"
	"github.com/pseudomuto/projectx/pkg/engine/compose"
	"github.com/pseudomuto/projectx/pkg/executor"
	"github.com/pseudomuto/projectx/pkg/project"
)

const (
	// DockerID is the identifier of the docker engine
	DockerID = "docker"

	// DockerClassname is the classname the docker engine is registered under
	DockerClassname = `ProjectX\Engine\DockerEngineType`
)

// Docker runs the project environment with docker compose.
type Docker struct {
	project *project.Project
	runner  *executor.Runner
	client  func() (docker.DockerClient, error)
	opts    compose.Options
}

// NewDocker creates the docker engine for a project.
func NewDocker(p *project.Project, deps Deps) (*Docker, error) {
	d := &Docker{project: p, runner: deps.Runner, client: deps.DockerClient}
	if err := p.Options("docker", &d.opts); err != nil {
		return nil, err
	}

	return d, nil
}

// ComposeFile returns the path of the compose file.
func (d *Docker) ComposeFile() string {
	return d.project.Path(compose.DefaultFile)
}

// Install writes docker-compose.yml (and the nginx site configuration when
// nginx is used) then brings the environment up.
func (d *Docker) Install(ctx context.Context) error {
	f, err := compose.Generate(d.project.Name(), d.opts)
	if err != nil {
		return err
	}

	if err := f.WriteFile(d.ComposeFile()); err != nil {
		return err
	}
	slog.Info("Wrote compose file", "path", d.ComposeFile(), "services", f.ServiceNames())

	if f.HasService("nginx") {
		if err := d.writeNginxConfig(); err != nil {
			return err
		}
	}

	return d.Up(ctx)
}

func (d *Docker) writeNginxConfig() error {
	rel, err := filepath.Rel(d.project.Root(), d.project.DocRoot())
	if err != nil {
		return errors.Wrap(err, "failed to resolve document root")
	}

	conf, err := compose.NginxConfigFile(filepath.ToSlash(rel))
	if err != nil {
		return err
	}

	path := d.project.Path(compose.NginxConfig)
	if err := os.MkdirAll(filepath.Dir(path), consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}

	return errors.Wrapf(os.WriteFile(path, []byte(conf), consts.ModeFile), "failed to write %s", path)
}

func (d *Docker) Up(ctx context.Context) error {
	return d.compose(ctx, "up", "-d")
}

func (d *Docker) Down(ctx context.Context) error {
	return d.compose(ctx, "down")
}

func (d *Docker) Start(ctx context.Context) error {
	return d.compose(ctx, "start")
}

func (d *Docker) Stop(ctx context.Context) error {
	return d.compose(ctx, "stop")
}

func (d *Docker) Restart(ctx context.Context) error {
	return d.compose(ctx, "restart")
}

// Rebuild recreates every container from freshly built images.
func (d *Docker) Rebuild(ctx context.Context) error {
	return d.compose(ctx, "up", "-d", "--build", "--force-recreate")
}

// Exec runs cmd in a running service container without a TTY.
func (d *Docker) Exec(ctx context.Context, service string, cmd ...string) error {
	return d.compose(ctx, append([]string{"exec", "-T", service}, cmd...)...)
}

// Status reads the state of the project containers from the Docker daemon.
func (d *Docker) Status(ctx context.Context) ([]ServiceStatus, error) {
	cl, err := d.client()
	if err != nil {
		return nil, err
	}

	eng := docker.NewEngine(cl)
	defer func() { _ = eng.Close() }()

	containers, err := eng.ProjectContainers(ctx, d.project.Name())
	if err != nil {
		return nil, err
	}

	res := make([]ServiceStatus, len(containers))
	for i, c := range containers {
		res[i] = ServiceStatus{
			Service: c.Service,
			Name:    c.Name,
			Image:   c.Image,
			State:   c.State,
			Status:  c.Status,
		}
	}

	return res, nil
}

func (d *Docker) compose(ctx context.Context, args ...string) error {
	_, err := d.runner.Run(ctx, executor.Task{
		Name:    "docker compose " + args[0],
		Command: "docker",
		Args:    append([]string{"compose", "-p", d.project.Name(), "-f", d.ComposeFile()}, args...),
		Dir:     d.project.Root(),
	})

	return err
}
