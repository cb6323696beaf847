package plugin_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pseudomuto/projectx/pkg/cache"
	"github.com/pseudomuto/projectx/pkg/plugin"
	"github.com/pseudomuto/projectx/pkg/scanner"
	"github.com/pseudomuto/projectx/pkg/types"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

const installedV2 = `{
    "packages": [
        {
            "name": "acme/projectx-lando",
            "type": "project-x-plugin",
            "autoload": {"psr-4": {"Acme\\Lando\\": "src/", "Acme\\Lando\\Tests\\": "tests/"}}
        },
        {
            "name": "acme/projectx-pantheon",
            "type": "project-x-plugin",
            "autoload": {"psr-4": {"Acme\\Pantheon\\": "src/"}}
        },
        {
            "name": "symfony/yaml",
            "type": "library",
            "autoload": {"psr-4": {"Symfony\\Component\\Yaml\\": ""}}
        },
        {
            "name": "acme/no-autoload",
            "type": "project-x-plugin",
            "autoload": {"psr-4": []}
        }
    ],
    "dev": true
}`

const installedV1 = `[
    {
        "name": "acme/projectx-lando",
        "type": "project-x-plugin",
        "autoload": {"psr-4": {"Acme\\Lando\\": "src/"}}
    }
]`

func vendorTree(t *testing.T, installed string) *fs.Dir {
	t.Helper()

	return fs.NewDir(t, "vendor",
		fs.WithDir("composer", fs.WithFile("installed.json", installed)),
		fs.WithDir("acme",
			fs.WithDir("projectx-lando", fs.WithDir("src",
				fs.WithDir("Engine",
					fs.WithFile("LandoEngineType.php", `<?php
namespace Acme\Lando\Engine;

use ProjectX\Engine\EngineType;

class LandoEngineType extends EngineType
{
    const LABEL = 'Lando';

    public static function getTypeId()
    {
        return 'Lando';
    }
}
`),
					fs.WithFile("DdevEngineType.php", `<?php
namespace Acme\Lando\Engine;

class DdevEngineType extends \ProjectX\Engine\EngineType
{
    const TYPE_ID = 'ddev';
}
`),
					fs.WithFile("VagrantEngineType.php", `<?php
namespace Acme\Lando\Engine;

class VagrantEngineType extends \ProjectX\Engine\EngineType {}
`),
					fs.WithFile("MisplacedEngineType.php", `<?php
namespace Elsewhere;

class MisplacedEngineType extends \ProjectX\Engine\EngineType {}
`),
					fs.WithFile("HelperEngineType.php", `<?php
namespace Acme\Lando\Engine;

class HelperEngineType {}
`),
				),
			)),
			fs.WithDir("projectx-pantheon", fs.WithDir("src",
				fs.WithDir("Platform",
					fs.WithFile("PantheonPlatformType.php", `<?php
namespace Acme\Pantheon\Platform;

use ProjectX\Platform\PlatformType;

class PantheonPlatformType extends PlatformType
{
    public static function getLabel(): string
    {
        return "Pantheon";
    }
}
`),
				),
			)),
		),
	)
}

func TestLoader_Namespaces(t *testing.T) {
	t.Run("composer 2", func(t *testing.T) {
		vendor := vendorTree(t, installedV2)
		loader := plugin.NewLoader(plugin.LoaderParams{VendorDir: vendor.Path()})

		namespaces, err := loader.Namespaces()
		require.NoError(t, err)
		require.Equal(t, map[string]string{
			"acme/projectx-lando":    `Acme\Lando\`,
			"acme/projectx-pantheon": `Acme\Pantheon\`,
		}, namespaces)
	})

	t.Run("composer 1", func(t *testing.T) {
		vendor := vendorTree(t, installedV1)
		loader := plugin.NewLoader(plugin.LoaderParams{VendorDir: vendor.Path()})

		namespaces, err := loader.Namespaces()
		require.NoError(t, err)
		require.Equal(t, map[string]string{"acme/projectx-lando": `Acme\Lando\`}, namespaces)
	})

	t.Run("nothing installed", func(t *testing.T) {
		loader := plugin.NewLoader(plugin.LoaderParams{VendorDir: t.TempDir()})

		namespaces, err := loader.Namespaces()
		require.NoError(t, err)
		require.Empty(t, namespaces)
	})

	t.Run("invalid metadata", func(t *testing.T) {
		vendor := vendorTree(t, "{nope")
		_, err := plugin.NewLoader(plugin.LoaderParams{VendorDir: vendor.Path()}).Namespaces()
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to parse")
	})
}

func TestLoader_NamespacesAreCached(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	backend := cache.NewMemory(cache.WithClock(func() time.Time { return now }))

	vendor := vendorTree(t, installedV2)
	loader := plugin.NewLoader(plugin.LoaderParams{VendorDir: vendor.Path(), Cache: backend})

	first, err := loader.Namespaces()
	require.NoError(t, err)
	require.Len(t, first, 2)

	// metadata changes are not observed while the cache is fresh
	installed := filepath.Join(vendor.Path(), "composer", "installed.json")
	require.NoError(t, os.WriteFile(installed, []byte(installedV1), 0o600))

	cached, err := loader.Namespaces()
	require.NoError(t, err)
	require.Equal(t, first, cached)

	now = now.Add(time.Hour)
	fresh, err := loader.Namespaces()
	require.NoError(t, err)
	require.Len(t, fresh, 1)
}

func TestLoader_Types(t *testing.T) {
	vendor := vendorTree(t, installedV2)
	loader := plugin.NewLoader(plugin.LoaderParams{VendorDir: vendor.Path()})

	engines, err := loader.Types(types.Engine)
	require.NoError(t, err)
	require.Equal(t, []types.Discovered{
		{ID: "ddev", Classname: `Acme\Lando\Engine\DdevEngineType`, Package: "acme/projectx-lando"},
		{ID: "lando", Label: "Lando", Classname: `Acme\Lando\Engine\LandoEngineType`, Package: "acme/projectx-lando"},
		{ID: "vagrant", Classname: `Acme\Lando\Engine\VagrantEngineType`, Package: "acme/projectx-lando"},
	}, engines)

	platforms, err := loader.Types(types.Platform)
	require.NoError(t, err)
	require.Equal(t, []types.Discovered{
		{ID: "pantheon", Label: "Pantheon", Classname: `Acme\Pantheon\Platform\PantheonPlatformType`, Package: "acme/projectx-pantheon"},
	}, platforms)

	projects, err := loader.Types(types.Project)
	require.NoError(t, err)
	require.Empty(t, projects)
}

func TestLoader_TypesExtendingBuiltins(t *testing.T) {
	vendor := fs.NewDir(t, "vendor",
		fs.WithDir("composer", fs.WithFile("installed.json", `{"packages": [{
			"name": "acme/projectx-docksal",
			"type": "project-x-plugin",
			"autoload": {"psr-4": {"Acme\\Docksal\\": "src/"}}
		}]}`)),
		fs.WithDir("acme", fs.WithDir("projectx-docksal", fs.WithDir("src", fs.WithDir("Engine",
			fs.WithFile("DocksalEngineType.php", `<?php
namespace Acme\Docksal\Engine;

use ProjectX\Engine\DockerEngineType;

class DocksalEngineType extends DockerEngineType {}
`),
		)))),
	)

	docksal := types.Discovered{ID: "docksal", Classname: `Acme\Docksal\Engine\DocksalEngineType`, Package: "acme/projectx-docksal"}

	t.Run("base type only", func(t *testing.T) {
		loader := plugin.NewLoader(plugin.LoaderParams{VendorDir: vendor.Path()})

		found, err := loader.Types(types.Engine)
		require.NoError(t, err)
		require.Empty(t, found)
	})

	t.Run("with built-in parents", func(t *testing.T) {
		loader := plugin.NewLoader(plugin.LoaderParams{VendorDir: vendor.Path()})

		c := types.Engine
		c.Extends = []string{`ProjectX\Engine\DockerEngineType`}

		found, err := loader.Types(c)
		require.NoError(t, err)
		require.Equal(t, []types.Discovered{docksal}, found)
	})

	t.Run("through a resolver", func(t *testing.T) {
		r := types.NewResolver(types.ResolverParams[string]{
			Category:   types.Engine,
			Null:       types.Definition[string]{ID: "null", Classname: `ProjectX\Engine\NullEngineType`},
			Builtins:   []types.Definition[string]{{ID: "docker", Classname: `ProjectX\Engine\DockerEngineType`}},
			Discoverer: plugin.NewLoader(plugin.LoaderParams{VendorDir: vendor.Path()}),
		})

		require.Equal(t, []types.Discovered{docksal}, r.Discovered())
		require.Equal(t, `Acme\Docksal\Engine\DocksalEngineType`, r.Classname("docksal"))
	})
}

func TestLoader_ResolverIntegration(t *testing.T) {
	vendor := vendorTree(t, installedV2)
	loader := plugin.NewLoader(plugin.LoaderParams{VendorDir: vendor.Path()})

	r := types.NewResolver(types.ResolverParams[string]{
		Category:   types.Engine,
		Null:       types.Definition[string]{ID: "null", Classname: `ProjectX\Engine\NullEngineType`},
		Builtins:   []types.Definition[string]{{ID: "docker", Classname: `ProjectX\Engine\DockerEngineType`}},
		Discoverer: loader,
	})

	require.Equal(t, []string{"ddev", "docker", "lando", "vagrant"}, r.Types().IDs())
	require.Equal(t, "Lando", r.Options()["lando"])
	require.Equal(t, "Vagrant", r.Options()["vagrant"])
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name string
		info *scanner.ClassInfo
		id   string
	}{
		{
			name: "method wins",
			info: &scanner.ClassInfo{
				Class:     `A\FooEngineType`,
				Returns:   map[string]string{"getTypeId": "bar"},
				Constants: map[string]string{"TYPE_ID": "baz"},
			},
			id: "bar",
		},
		{
			name: "constant",
			info: &scanner.ClassInfo{Class: `A\FooEngineType`, Constants: map[string]string{"TYPE_ID": "baz"}},
			id:   "baz",
		},
		{
			name: "class name",
			info: &scanner.ClassInfo{Class: `A\FooEngineType`},
			id:   "foo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.id, plugin.Identifier(tt.info, types.Engine))
		})
	}
}
