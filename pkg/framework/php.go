package framework

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/composer"
	"github.com/pseudomuto/projectx/pkg/project"
)

const (
	// PHPID is the identifier of the plain php project type
	PHPID = "php"

	// DefaultPHPVersion is the minimum PHP version of new projects
	DefaultPHPVersion = "8.2"
)

// PHP is a plain composer based project.
type PHP struct {
	project *project.Project
	deps    Deps
}

// NewPHP creates the php project type.
func NewPHP(p *project.Project, deps Deps) *PHP {
	return &PHP{project: p, deps: deps}
}

// Setup writes a minimal composer.json for new projects and installs
// dependencies.
func (p *PHP) Setup(ctx context.Context, opts SetupOptions) error {
	if opts.Existing {
		slog.Info("Existing php project, nothing to generate")
		return nil
	}

	m, err := p.Manifest()
	if err != nil {
		return err
	}

	if err := m.WriteFile(p.project.Path(composer.ManifestFile)); err != nil {
		return err
	}

	if opts.SkipComposer {
		return nil
	}

	return p.deps.Composer(p.project.Root()).Install(ctx)
}

// Manifest builds the composer manifest, merging an existing one on top.
func (p *PHP) Manifest() (composer.Manifest, error) {
	version := DefaultPHPVersion
	if cfg := p.project.Config(); cfg != nil && cfg.Version != "" {
		version = cfg.Version
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid php version %s", version)
	}

	m := composer.Manifest{
		"name": p.project.Name() + "/" + p.project.Name(),
		"type": "project",
	}
	m.Require("php", fmt.Sprintf(">=%d.%d", v.Major(), v.Minor()), false)

	existing, err := composer.ReadFile(p.project.Path(composer.ManifestFile))
	if err != nil {
		return nil, err
	}

	if err := m.Merge(existing); err != nil {
		return nil, err
	}

	return m, nil
}

// Install installs composer dependencies.
func (p *PHP) Install(ctx context.Context, _ InstallOptions) error {
	return p.deps.Composer(p.project.Root()).Install(ctx)
}

// Build installs production dependencies in dir.
func (p *PHP) Build(ctx context.Context, dir string) error {
	return buildComposer(ctx, p.deps, dir)
}

func buildComposer(ctx context.Context, deps Deps, dir string) error {
	return deps.Composer(dir).Run(ctx, "install", "--no-dev", "--optimize-autoloader", "--no-interaction")
}
