// Package platform implements the deployment platform category. A platform
// publishes a prepared build directory somewhere remote.
package platform

import (
	"context"
	"log/slog"

	"github.com/pseudomuto/projectx/pkg/project"
	"github.com/pseudomuto/projectx/pkg/types"
)

type (
	// Platform publishes builds.
	Platform interface {
		Deploy(ctx context.Context, buildDir string, opts DeployOptions) (*Result, error)
	}

	// DeployOptions control a deployment.
	DeployOptions struct {
		// Message describes the build. Defaults to a timestamped message.
		Message string

		// Tag labels the deployed revision when set
		Tag string

		// DryRun commits locally without publishing
		DryRun bool
	}

	// Result describes a deployment.
	Result struct {
		Revision string
		Remote   string
		Branch   string
		Pushed   bool
	}
)

// NullDefinition is used for unknown identifiers.
var NullDefinition = types.Definition[Platform]{
	ID:        "null",
	Label:     "None",
	Classname: `ProjectX\Platform\NullPlatformType`,
	New: func(*project.Project) (Platform, error) {
		return Null{}, nil
	},
}

// Builtins returns the platform types shipped with projectx.
func Builtins() []types.Definition[Platform] {
	return []types.Definition[Platform]{
		{
			ID:        GitID,
			Label:     "Git",
			Classname: `ProjectX\Platform\GitPlatformType`,
			New: func(p *project.Project) (Platform, error) {
				return NewGit(p)
			},
		},
	}
}

// NewResolver creates the platform type resolver.
func NewResolver(p *project.Project, d types.Discoverer) *types.Resolver[Platform] {
	return types.NewResolver(types.ResolverParams[Platform]{
		Category:   types.Platform,
		Project:    p,
		Null:       NullDefinition,
		Builtins:   Builtins(),
		Discoverer: d,
	})
}

// Create constructs the platform selected by the project configuration.
func Create(r *types.Resolver[Platform]) (Platform, error) {
	return r.CreateConfigured()
}

// Null is the platform of projects that are not deployed by projectx.
type Null struct{}

func (Null) Deploy(_ context.Context, buildDir string, _ DeployOptions) (*Result, error) {
	slog.Warn("No deployment platform configured, build left in place", "dir", buildDir)
	return &Result{}, nil
}
