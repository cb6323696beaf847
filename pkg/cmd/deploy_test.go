package cmd

import (
	"testing"

	"github.com/pseudomuto/projectx/pkg/cmd/testutil"
	"github.com/stretchr/testify/require"
)

const deployProject = `name: acme
type: php
platform: git
version: "8.2"
options:
  git:
    remote: https://example.com/acme/build.git
    branch: release
  deploy:
    excludes:
      - "*.md"
`

func deployFixture(t *testing.T) *testutil.ProjectFixture {
	t.Helper()

	return testutil.TestProject(t, deployProject).
		WithFile("index.php", "<?php echo 'hello';\n").
		WithFile("src/App.php", "<?php class App {}\n").
		WithFile("vendor/autoload.php", "<?php\n").
		WithFile("README.md", "# acme\n")
}

func TestDeployCommand_Build(t *testing.T) {
	fixture := deployFixture(t)
	rt, rec, out := testRuntime(t, fixture.Dir)

	require.NoError(t, testutil.RunCommand(t, deployCmd(rt), "build"))

	require.FileExists(t, fixture.Path("build", "index.php"))
	require.FileExists(t, fixture.Path("build", "src", "App.php"))
	testutil.RequireNoFile(t, fixture.Path("build", "vendor", "autoload.php"))
	testutil.RequireNoFile(t, fixture.Path("build", "README.md"))

	require.Equal(t, [][]string{
		{"composer", "install", "--no-dev", "--optimize-autoloader", "--no-interaction"},
	}, rec.calls)
	require.Contains(t, out.String(), "Build created in "+fixture.Path("build"))
}

func TestDeployCommand_PushDryRun(t *testing.T) {
	fixture := deployFixture(t)
	rt, _, out := testRuntime(t, fixture.Dir)

	err := testutil.RunCommand(t, deployCmd(rt), "build", "--push", "--dry-run", "--tag", "1.0.0", "-m", "Release 1.0.0")
	require.NoError(t, err)

	require.DirExists(t, fixture.Path("build", ".git"))
	require.Contains(t, out.String(), "on release (not pushed)")
}

func TestDeployCommand_PushWithoutRemote(t *testing.T) {
	fixture := testutil.TestProject(t, "")
	rt, _, _ := testRuntime(t, fixture.Dir)

	err := testutil.RunCommand(t, deployCmd(rt), "build", "--push")
	testutil.RequireError(t, err, "remote")
}
