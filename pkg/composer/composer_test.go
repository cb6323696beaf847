package composer_test

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/pseudomuto/projectx/pkg/composer"
	"github.com/pseudomuto/projectx/pkg/docker"
	"github.com/pseudomuto/projectx/pkg/executor"
	"github.com/stretchr/testify/require"
)

const manifest = `{
    "require": {
        "drupal/core-recommended": "^10.2",
        "php": ">=8.1",
        "composer/installers": "^2.0",
        "ext-gd": "*"
    },
    "extra": {"installer-paths": {"docroot/core": ["type:drupal-core"]}},
    "name": "acme/site",
    "zzz-custom": true,
    "minimum-stability": "dev",
    "type": "project",
    "config": {"sort-packages": true, "process-timeout": 0}
}`

const expected = `{
    "name": "acme/site",
    "type": "project",
    "require": {
        "ext-gd": "*",
        "php": ">=8.1",
        "composer/installers": "^2.0",
        "drupal/core-recommended": "^10.2"
    },
    "minimum-stability": "dev",
    "config": {
        "process-timeout": 0,
        "sort-packages": true
    },
    "extra": {
        "installer-paths": {
            "docroot/core": [
                "type:drupal-core"
            ]
        }
    },
    "zzz-custom": true
}
`

func TestManifest_Write(t *testing.T) {
	m, err := composer.Read(strings.NewReader(manifest))
	require.NoError(t, err)
	require.Equal(t, []string{"name", "type", "require", "minimum-stability", "config", "extra", "zzz-custom"}, m.Keys())

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))
	require.Equal(t, expected, buf.String())
}

func TestManifest_Merge(t *testing.T) {
	m, err := composer.Read(strings.NewReader(manifest))
	require.NoError(t, err)

	require.NoError(t, m.Merge(composer.Manifest{
		"require":           map[string]any{"drush/drush": "^12"},
		"minimum-stability": "stable",
		"description":       "Acme site",
	}))

	c, ok := m.Requires("drush/drush")
	require.True(t, ok)
	require.Equal(t, "^12", c)

	c, ok = m.Requires("php")
	require.True(t, ok)
	require.Equal(t, ">=8.1", c)

	require.Equal(t, "stable", m["minimum-stability"])
	require.Equal(t, "Acme site", m["description"])
}

func TestManifest_Require(t *testing.T) {
	m := composer.Manifest{}
	m.Require("drupal/core-dev", "^10", true)
	m.Require("php", ">=8.2", false)

	c, ok := m.Requires("drupal/core-dev")
	require.True(t, ok)
	require.Equal(t, "^10", c)

	_, ok = m.Requires("drush/drush")
	require.False(t, ok)
}

func TestReadFile_Missing(t *testing.T) {
	m, err := composer.ReadFile(filepath.Join(t.TempDir(), composer.ManifestFile))
	require.NoError(t, err)
	require.Empty(t, m)
}

func TestManifest_WriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), composer.ManifestFile)

	m := composer.Manifest{"name": "acme/site"}
	m.Require("php", ">=8.2", false)
	require.NoError(t, m.WriteFile(path))

	read, err := composer.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "acme/site", read["name"])
}

func TestRunner(t *testing.T) {
	t.Run("host composer", func(t *testing.T) {
		var calls [][]string
		runner := executor.New(executor.Config{ExecCommand: func(ctx context.Context, name string, arg ...string) *exec.Cmd {
			calls = append(calls, append([]string{name}, arg...))
			return exec.CommandContext(ctx, "true")
		}})

		r := composer.NewRunner(composer.RunnerParams{
			Dir:      t.TempDir(),
			Exec:     runner,
			LookPath: func(string) bool { return true },
		})

		require.NoError(t, r.Install(context.Background()))
		require.Equal(t, [][]string{{"composer", "install", "--no-interaction"}}, calls)
	})

	t.Run("container fallback", func(t *testing.T) {
		dir := t.TempDir()
		var got docker.ToolOptions
		var out bytes.Buffer

		r := composer.NewRunner(composer.RunnerParams{
			Dir:      dir,
			LookPath: func(string) bool { return false },
			Stdout:   &out,
			Tool: func(_ context.Context, opts docker.ToolOptions) (*docker.ToolResult, error) {
				got = opts
				return &docker.ToolResult{ExitCode: 2, Output: "Your requirements could not be resolved\n"}, nil
			},
		})

		err := r.Update(context.Background(), "drupal/core")

		var cmdErr *executor.CommandError
		require.True(t, errors.As(err, &cmdErr))
		require.Equal(t, 2, cmdErr.ExitCode)
		require.Equal(t, "composer update", cmdErr.Task)

		require.Equal(t, composer.Image, got.Image)
		require.Equal(t, dir, got.HostDir)
		require.Equal(t, []string{"composer", "update", "--no-interaction", "--with-all-dependencies", "drupal/core"}, got.Cmd)
		require.Contains(t, out.String(), "could not be resolved")
	})
}
