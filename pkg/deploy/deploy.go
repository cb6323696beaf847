// Package deploy assembles a production build of a project and hands it to
// the deployment platform.
//
// A build is a copy of the project without development artifacts. The project
// type then prepares it (production dependencies, no local settings) and the
// platform publishes it.
package deploy

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/consts"
	"github.com/pseudomuto/projectx/pkg/framework"
	"github.com/pseudomuto/projectx/pkg/platform"
	"github.com/pseudomuto/projectx/pkg/project"
)

// DefaultExcludes are never copied into a build.
var DefaultExcludes = []string{
	".git",
	".github",
	".gitignore",
	".idea",
	".vscode",
	"node_modules",
	consts.DefaultVendorDir,
	consts.LocalConfigFile,
	"docker-compose.yml",
	"docker",
	"*.log",
}

type (
	// Options is the options.deploy block.
	Options struct {
		// BuildDir is relative to the project root. Defaults to build.
		BuildDir string `mapstructure:"build_dir"`

		// Excludes are glob patterns matched against the slash separated
		// relative path and the base name of every entry.
		Excludes []string `mapstructure:"excludes"`
	}

	// BuilderParams configures a Builder.
	BuilderParams struct {
		Project   *project.Project
		Framework framework.Framework
		Platform  platform.Platform
	}

	// Builder creates and deploys builds.
	Builder struct {
		project   *project.Project
		framework framework.Framework
		platform  platform.Platform
		opts      Options
	}
)

// NewBuilder creates a Builder from the project's deploy options.
func NewBuilder(p BuilderParams) (*Builder, error) {
	b := &Builder{project: p.Project, framework: p.Framework, platform: p.Platform}
	if err := p.Project.Options("deploy", &b.opts); err != nil {
		return nil, err
	}

	if b.opts.BuildDir == "" {
		b.opts.BuildDir = consts.DefaultBuildDir
	}

	return b, nil
}

// Dir returns the absolute build directory.
func (b *Builder) Dir() string {
	if filepath.IsAbs(b.opts.BuildDir) {
		return b.opts.BuildDir
	}

	return b.project.Path(b.opts.BuildDir)
}

// Build refreshes the build directory and lets the project type prepare it.
// Version control metadata already in the build directory is kept.
func (b *Builder) Build(ctx context.Context) (string, error) {
	dir := b.Dir()
	if err := clean(dir); err != nil {
		return "", err
	}

	copied, err := b.copy(dir)
	if err != nil {
		return "", err
	}
	slog.Info("Copied project into build", "dir", dir, "files", copied)

	if b.framework != nil {
		if err := b.framework.Build(ctx, dir); err != nil {
			return "", errors.Wrap(err, "failed to prepare build")
		}
	}

	return dir, nil
}

// Deploy builds the project and publishes the build.
func (b *Builder) Deploy(ctx context.Context, opts platform.DeployOptions) (*platform.Result, error) {
	if b.platform == nil {
		return nil, errors.New("no deployment platform")
	}

	dir, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}

	return b.platform.Deploy(ctx, dir, opts)
}

// Excluded reports whether a project relative path is left out of builds.
func (b *Builder) Excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	if rel == filepath.ToSlash(b.opts.BuildDir) {
		return true
	}

	base := path.Base(rel)
	for _, patterns := range [][]string{DefaultExcludes, b.opts.Excludes} {
		for _, pattern := range patterns {
			pattern = strings.TrimSuffix(pattern, "/")
			if ok, _ := path.Match(pattern, rel); ok {
				return true
			}

			if ok, _ := path.Match(pattern, base); ok {
				return true
			}
		}
	}

	return false
}

func (b *Builder) copy(dst string) (int, error) {
	root := b.project.Root()
	count := 0

	err := filepath.WalkDir(root, func(src string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, src)
		if err != nil || rel == "." {
			return err
		}

		if b.Excluded(rel) || src == dst {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)
		switch {
		case d.IsDir():
			return os.MkdirAll(target, consts.ModeDir)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(src)
			if err != nil {
				return err
			}
			count++
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			count++
			return copyFile(src, target)
		default:
			return nil
		}
	})

	return count, errors.Wrap(err, "failed to copy project into build")
}

// clean empties dir, keeping a .git directory.
func clean(dir string) error {
	if err := os.MkdirAll(dir, consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create build dir %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "failed to read build dir %s", dir)
	}

	for _, e := range entries {
		if e.Name() == ".git" {
			continue
		}

		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return errors.Wrapf(err, "failed to clean build dir %s", dir)
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, info.Mode().Perm())
}
