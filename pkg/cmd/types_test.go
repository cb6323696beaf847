package cmd

import (
	"testing"

	"github.com/pseudomuto/projectx/pkg/cmd/testutil"
	"github.com/pseudomuto/projectx/pkg/engine"
	"github.com/stretchr/testify/require"
)

const landoEngine = `<?php
namespace Acme\Lando\Engine;

use ProjectX\Engine\EngineType;

class LandoEngineType extends EngineType
{
    const LABEL = 'Lando';

    public static function getTypeId()
    {
        return 'lando';
    }
}
`

func TestTypesCommand(t *testing.T) {
	fixture := testutil.TestProject(t, "").
		WithPlugin("acme/projectx-lando", `Acme\Lando\`, map[string]string{
			"Engine/LandoEngineType.php": landoEngine,
		})
	rt, _, out := testRuntime(t, fixture.Dir)

	require.NoError(t, testutil.RunCommand(t, typesCmd(rt)))

	output := out.String()
	require.Contains(t, output, "engine")
	require.Contains(t, output, "docker *")
	require.Contains(t, output, engine.DockerClassname)
	require.Contains(t, output, `Acme\Lando\Engine\LandoEngineType`)
	require.Contains(t, output, "php *")
	require.Contains(t, output, "drupal")
	require.Contains(t, output, "git *")
}

func TestTypesCommand_Category(t *testing.T) {
	fixture := testutil.TestProject(t, "")
	rt, _, out := testRuntime(t, fixture.Dir)

	require.NoError(t, testutil.RunCommand(t, typesCmd(rt), "--category", "platform"))
	require.Contains(t, out.String(), "git")
	require.NotContains(t, out.String(), "drupal")
}

func TestTypesCommand_WithoutProject(t *testing.T) {
	fixture := testutil.EmptyProject(t)
	rt, _, out := testRuntime(t, fixture.Dir)

	require.NoError(t, testutil.RunCommand(t, typesCmd(rt)))
	require.Contains(t, out.String(), "docker")
	require.NotContains(t, out.String(), "*")
}
