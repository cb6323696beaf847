package cmd

import (
	"testing"

	"github.com/pseudomuto/projectx/pkg/cmd/testutil"
	"github.com/stretchr/testify/require"
)

func TestReportCommand_Raw(t *testing.T) {
	fixture := testutil.TestProject(t, dockerProject)
	rt, _, out := testRuntime(t, fixture.Dir)

	require.NoError(t, testutil.RunCommand(t, reportCmd(rt), "--raw", "--services"))

	md := out.String()
	require.Contains(t, md, "# acme")
	require.Contains(t, md, "| docker (selected) | Docker |")
	require.Contains(t, md, "| php (selected) | PHP |")
	require.Contains(t, md, "| acme-php-1 |")
	require.Contains(t, md, "`engine up` before: `echo starting > hook.txt`")
}

func TestReportCommand_Rendered(t *testing.T) {
	fixture := testutil.TestProject(t, "")
	rt, _, out := testRuntime(t, fixture.Dir)

	require.NoError(t, testutil.RunCommand(t, reportCmd(rt), "--width", "80"))
	require.Contains(t, out.String(), "acme")
	require.NotContains(t, out.String(), "| --- |")
}
