package config_test

import (
	"bytes"
	_ "embed"
	"strings"
	"testing"

	"github.com/pkg/errors"
	. "github.com/pseudomuto/projectx/pkg/config"
	"github.com/pseudomuto/projectx/pkg/consts"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

var (
	//go:embed testdata/project-x.yml
	testConfigYAML string

	//go:embed testdata/project-x.local.yml
	testLocalConfigYAML string
)

func TestLoadConfig(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		cfg, err := LoadConfig(strings.NewReader(testConfigYAML))
		require.NoError(t, err)

		require.Equal(t, "acme", cfg.Name)
		require.Equal(t, "drupal", cfg.Type)
		require.Equal(t, "docker", cfg.Engine)
		require.Equal(t, "git", cfg.Platform)
		require.Equal(t, "10.2", cfg.Version)
		require.Equal(t, "docroot", cfg.Root)
		require.Equal(t, "local.acme.test", cfg.HostName())
		require.True(t, cfg.Host.Open)
		require.Equal(t, "acme", cfg.Github.Owner())
		require.Equal(t, "site", cfg.Github.Repo())

		require.Len(t, cfg.Remote.Environments, 2)
		env, ok := cfg.Environment("PRODUCTION")
		require.True(t, ok)
		require.Equal(t, "prd", env.Realm)
		require.Equal(t, "https://acme.test", env.URI)

		_, ok = cfg.Environment("staging")
		require.False(t, ok)

		require.Contains(t, cfg.CommandHooks, "engine")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		cfg, err := LoadConfig(strings.NewReader("invalid: yaml: ["))
		require.Error(t, err)
		require.Nil(t, cfg)
		require.Contains(t, err.Error(), "failed to unmarshal project config")
	})

	t.Run("numeric version", func(t *testing.T) {
		cfg, err := LoadConfig(strings.NewReader("name: acme\nversion: 10\n"))
		require.NoError(t, err)
		require.Equal(t, "10", cfg.Version)
	})
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		path    string
		keyword string
	}{
		{name: "missing name", yaml: "type: drupal\n", path: "", keyword: "required"},
		{name: "invalid name", yaml: "name: Acme Corp\n", path: "/name", keyword: "pattern"},
		{name: "unknown key", yaml: "name: acme\nbogus: true\n", path: "", keyword: "additionalProperties"},
		{name: "host open type", yaml: "name: acme\nhost:\n  open: sometimes\n", path: "/host/open", keyword: "type"},
		{
			name:    "environment without name",
			yaml:    "name: acme\nremote:\n  environments:\n    - uri: https://x.test\n",
			path:    "/remote/environments/0",
			keyword: "required",
		},
		{
			name:    "unknown hook type",
			yaml:    "name: acme\ncommand_hooks:\n  engine:\n    up:\n      before:\n        - type: ftp\n",
			path:    "/command_hooks/engine/up/before/0/type",
			keyword: "enum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(strings.NewReader(tt.yaml))
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)

			found := false
			for _, issue := range verr.Issues {
				if issue.Path == tt.path && issue.Keyword == tt.keyword {
					found = true
				}
			}
			require.True(t, found, "issue %s (%s) not in %+v", tt.path, tt.keyword, verr.Issues)
		})
	}
}

func TestLoadConfig_InvalidVersion(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("name: acme\nversion: latest-ish\n"))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "/version", verr.Issues[0].Path)
	require.Contains(t, err.Error(), "invalid version latest-ish")
}

func TestLoad(t *testing.T) {
	t.Run("merges local overrides", func(t *testing.T) {
		dir := fs.NewDir(t, "config",
			fs.WithFile(consts.ConfigFile, testConfigYAML),
			fs.WithFile(consts.LocalConfigFile, testLocalConfigYAML),
		)

		cfg, err := Load(dir.Path())
		require.NoError(t, err)

		require.Equal(t, "acme.localhost", cfg.HostName())
		require.True(t, cfg.Host.Open)

		var docker struct {
			Services map[string]struct {
				Version string `mapstructure:"version"`
			} `mapstructure:"services"`
		}
		require.NoError(t, cfg.Options("docker", &docker))
		require.Equal(t, "8.2", docker.Services["php"].Version)
		require.Equal(t, "8.0", docker.Services["mysql"].Version)
	})

	t.Run("without local overrides", func(t *testing.T) {
		dir := fs.NewDir(t, "config", fs.WithFile(consts.ConfigFile, testConfigYAML))

		cfg, err := Load(dir.Path())
		require.NoError(t, err)
		require.Equal(t, "local.acme.test", cfg.HostName())
	})

	t.Run("missing config", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfigFile("does-not-exist.yml")
		require.ErrorIs(t, err, ErrConfigNotFound)
	})
}

func TestConfig_Options(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(testConfigYAML))
	require.NoError(t, err)

	var drupal struct {
		Profile string `mapstructure:"profile"`
		Site    struct {
			Name string `mapstructure:"name"`
		} `mapstructure:"site"`
	}
	require.NoError(t, cfg.Options("drupal", &drupal))
	require.Equal(t, "standard", drupal.Profile)
	require.Equal(t, "Acme", drupal.Site.Name)

	var missing struct{ Value string }
	require.NoError(t, cfg.Options("nope", &missing))
	require.Empty(t, missing.Value)

	t.Run("hand built config", func(t *testing.T) {
		cfg := &Config{OptionBlocks: map[string]any{"deploy": map[string]any{"branch": "release"}}}

		var deploy struct {
			Branch string `mapstructure:"branch"`
		}
		require.NoError(t, cfg.Options("deploy", &deploy))
		require.Equal(t, "release", deploy.Branch)
	})
}

func TestConfig_Write(t *testing.T) {
	cfg := &Config{
		Name:   "acme",
		Type:   "php",
		Engine: "docker",
		Github: Github{URL: "git@github.com:acme/site.git"},
	}

	var buf bytes.Buffer
	require.NoError(t, cfg.Write(&buf))
	require.Contains(t, buf.String(), "name: acme\ntype: php\nengine: docker\n")
	require.NotContains(t, buf.String(), "command_hooks")
	require.NotContains(t, buf.String(), "remote")

	roundTrip, err := LoadConfig(&buf)
	require.NoError(t, err)
	require.Equal(t, "acme", roundTrip.Github.Owner())
	require.Equal(t, "site", roundTrip.Github.Repo())
}
