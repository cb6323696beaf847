package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/projectx/pkg/config"
	"github.com/pseudomuto/projectx/pkg/consts"
	"github.com/pseudomuto/projectx/pkg/plugin"
	"github.com/pseudomuto/projectx/pkg/project"
	"github.com/stretchr/testify/require"
)

// DefaultConfig is the project-x.yml written by TestProject when none is given
const DefaultConfig = `name: acme
type: php
engine: docker
platform: git
version: "8.2"
`

// ProjectFixture represents a test project environment
type ProjectFixture struct {
	Dir     string
	Config  *config.Config
	Project *project.Project

	plugins []pluginPackage
	t       *testing.T
}

type pluginPackage struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Autoload map[string]any `json:"autoload"`
}

// TestProject creates an isolated temp directory holding project-x.yml with
// the given content (DefaultConfig when empty) and loads it.
func TestProject(t *testing.T, cfg string) *ProjectFixture {
	t.Helper()

	if cfg == "" {
		cfg = DefaultConfig
	}

	p := &ProjectFixture{Dir: t.TempDir(), t: t}
	p.WithFile(consts.ConfigFile, cfg)
	return p.Reload()
}

// EmptyProject creates an isolated temp directory without any configuration.
func EmptyProject(t *testing.T) *ProjectFixture {
	t.Helper()

	p := &ProjectFixture{Dir: t.TempDir(), t: t}
	p.Project = project.New(project.ProjectParams{Dir: p.Dir})
	return p
}

// Reload reads the configuration again, e.g. after WithFile replaced it.
func (p *ProjectFixture) Reload() *ProjectFixture {
	p.t.Helper()

	proj, err := project.Load(p.Dir)
	require.NoError(p.t, err, "Failed to load test project")

	p.Project = proj
	p.Config = proj.Config()
	return p
}

// Path joins parts onto the project directory
func (p *ProjectFixture) Path(parts ...string) string {
	return filepath.Join(append([]string{p.Dir}, parts...)...)
}

// WithFile writes a project relative file, creating parent directories
func (p *ProjectFixture) WithFile(path, content string) *ProjectFixture {
	p.t.Helper()

	fullPath := p.Path(filepath.FromSlash(path))
	require.NoError(p.t, os.MkdirAll(filepath.Dir(fullPath), consts.ModeDir), "Failed to create directory for %s", path)
	require.NoError(p.t, os.WriteFile(fullPath, []byte(content), consts.ModeFile), "Failed to write file: %s", path)

	return p
}

// WithPlugin installs a projectx plugin package into vendor/. Files are keyed
// by their path below the package's src/ directory.
//
// Example:
//
//	fixture.WithPlugin("acme/projectx-lando", `Acme\Lando\`, map[string]string{
//		"Engine/LandoEngineType.php": landoSource,
//	})
func (p *ProjectFixture) WithPlugin(name, namespace string, files map[string]string) *ProjectFixture {
	p.t.Helper()

	p.plugins = append(p.plugins, pluginPackage{
		Name:     name,
		Type:     consts.PluginPackageType,
		Autoload: map[string]any{"psr-4": map[string]string{namespace: "src/"}},
	})

	for path, content := range files {
		p.WithFile(filepath.Join(consts.DefaultVendorDir, name, "src", path), content)
	}

	data, err := json.MarshalIndent(map[string]any{"packages": p.plugins}, "", "    ")
	require.NoError(p.t, err, "Failed to encode installed packages")

	return p.WithFile(filepath.Join(consts.DefaultVendorDir, plugin.InstalledFile), string(data))
}
