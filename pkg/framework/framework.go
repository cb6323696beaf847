// Package framework implements the project type category (drupal, php). A
// project type knows how to set a codebase up, install it into the running
// environment and prepare a deployable build.
package framework

import (
	"context"
	"log/slog"

	"github.com/pseudomuto/projectx/pkg/composer"
	"github.com/pseudomuto/projectx/pkg/engine"
	"github.com/pseudomuto/projectx/pkg/project"
	"github.com/pseudomuto/projectx/pkg/types"
)

type (
	// Framework is a project type.
	Framework interface {
		// Setup prepares the codebase. New projects get a fresh composer
		// manifest and dependencies; existing ones only local settings.
		Setup(ctx context.Context, opts SetupOptions) error

		// Install installs the application into the environment.
		Install(ctx context.Context, opts InstallOptions) error

		// Build prepares a production build in dir, a copy of the project.
		Build(ctx context.Context, dir string) error
	}

	// SetupOptions control Setup.
	SetupOptions struct {
		// Existing skips composer manifest generation
		Existing bool

		// SkipComposer skips running composer after generating the manifest
		SkipComposer bool
	}

	// InstallOptions control Install.
	InstallOptions struct {
		// Profile overrides the configured install profile
		Profile string
	}

	// Deps are shared by the built-in project types.
	Deps struct {
		// Engine returns the project's environment engine.
		Engine func() (engine.Engine, error)

		// Composer returns a composer runner for a directory.
		Composer func(dir string) *composer.Runner
	}
)

// NullDefinition is used for unknown identifiers.
var NullDefinition = types.Definition[Framework]{
	ID:        "null",
	Label:     "None",
	Classname: `ProjectX\Project\NullProjectType`,
	New: func(*project.Project) (Framework, error) {
		return Null{}, nil
	},
}

// Builtins returns the project types shipped with projectx.
func Builtins(deps Deps) []types.Definition[Framework] {
	if deps.Composer == nil {
		deps.Composer = func(dir string) *composer.Runner {
			return composer.NewRunner(composer.RunnerParams{Dir: dir})
		}
	}

	if deps.Engine == nil {
		deps.Engine = func() (engine.Engine, error) { return &engine.Null{}, nil }
	}

	return []types.Definition[Framework]{
		{
			ID:        DrupalID,
			Label:     "Drupal",
			Classname: `ProjectX\Project\DrupalProjectType`,
			New: func(p *project.Project) (Framework, error) {
				return NewDrupal(p, deps)
			},
		},
		{
			ID:        PHPID,
			Label:     "PHP",
			Classname: `ProjectX\Project\PhpProjectType`,
			New: func(p *project.Project) (Framework, error) {
				return NewPHP(p, deps), nil
			},
		},
	}
}

// NewResolver creates the project type resolver.
func NewResolver(p *project.Project, d types.Discoverer, deps Deps) *types.Resolver[Framework] {
	return types.NewResolver(types.ResolverParams[Framework]{
		Category:   types.Project,
		Project:    p,
		Null:       NullDefinition,
		Builtins:   Builtins(deps),
		Discoverer: d,
	})
}

// Create constructs the project type selected by the project configuration.
func Create(r *types.Resolver[Framework]) (Framework, error) {
	return r.CreateConfigured()
}

// Null is the project type of unrecognized projects.
type Null struct{}

func (Null) Setup(context.Context, SetupOptions) error {
	slog.Warn("Unknown project type, nothing to set up")
	return nil
}

func (Null) Install(context.Context, InstallOptions) error {
	slog.Warn("Unknown project type, nothing to install")
	return nil
}

func (Null) Build(context.Context, string) error {
	return nil
}
