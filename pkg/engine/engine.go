// Package engine implements the environment engine category: the types that
// bring a project's local environment up and down.
//
// The docker engine drives docker compose through the executor and reads
// container state from the Docker daemon. The null engine is used whenever an
// identifier resolves to nothing.
package engine

import (
	"context"

	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/docker"
	"github.com/pseudomuto/projectx/pkg/executor"
	"github.com/pseudomuto/projectx/pkg/project"
	"github.com/pseudomuto/projectx/pkg/types"
)

// ErrNoEngine is returned by operations the null engine cannot emulate.
var ErrNoEngine = errors.New("no environment engine configured")

type (
	// Engine manages the local environment of a project.
	Engine interface {
		// Install writes the engine's configuration files and brings the
		// environment up for the first time.
		Install(ctx context.Context) error
		Up(ctx context.Context) error
		Down(ctx context.Context) error
		Start(ctx context.Context) error
		Stop(ctx context.Context) error
		Restart(ctx context.Context) error
		Rebuild(ctx context.Context) error

		// Exec runs a command inside a service of the environment.
		Exec(ctx context.Context, service string, cmd ...string) error

		// Status reports the state of every service.
		Status(ctx context.Context) ([]ServiceStatus, error)
	}

	// ServiceStatus is the state of a single environment service.
	ServiceStatus struct {
		Service string
		Name    string
		Image   string
		State   string
		Status  string
	}

	// Deps are shared by the built-in engine types.
	Deps struct {
		Runner *executor.Runner

		// DockerClient connects to the Docker daemon. Defaults to
		// docker.NewClient.
		DockerClient func() (docker.DockerClient, error)
	}
)

// NullDefinition is used for unknown identifiers.
var NullDefinition = types.Definition[Engine]{
	ID:        "null",
	Label:     "None",
	Classname: `ProjectX\Engine\NullEngineType`,
	New: func(p *project.Project) (Engine, error) {
		return &Null{}, nil
	},
}

// Builtins returns the engine types shipped with projectx.
func Builtins(deps Deps) []types.Definition[Engine] {
	if deps.Runner == nil {
		deps.Runner = executor.New(executor.Config{})
	}

	if deps.DockerClient == nil {
		deps.DockerClient = func() (docker.DockerClient, error) { return docker.NewClient() }
	}

	return []types.Definition[Engine]{
		{
			ID:        DockerID,
			Label:     "Docker",
			Classname: DockerClassname,
			New: func(p *project.Project) (Engine, error) {
				return NewDocker(p, deps)
			},
		},
	}
}

// NewResolver creates the engine type resolver.
func NewResolver(p *project.Project, d types.Discoverer, deps Deps) *types.Resolver[Engine] {
	return types.NewResolver(types.ResolverParams[Engine]{
		Category:   types.Engine,
		Project:    p,
		Null:       NullDefinition,
		Builtins:   Builtins(deps),
		Discoverer: d,
	})
}

// Create constructs the engine selected by the project configuration.
func Create(r *types.Resolver[Engine]) (Engine, error) {
	return r.CreateConfigured()
}
