package testutil

import (
	"context"
	"testing"

	"github.com/urfave/cli/v3"
)

// RunCommand executes a command with a background context
func RunCommand(t *testing.T, command *cli.Command, args ...string) error {
	t.Helper()
	return RunCommandWithContext(context.Background(), t, command, args...)
}

// RunCommandWithContext executes a command below a test root command, the way
// the projectx root command would dispatch it
func RunCommandWithContext(ctx context.Context, t *testing.T, command *cli.Command, args ...string) error {
	t.Helper()

	app := &cli.Command{
		Name:     "test",
		Commands: []*cli.Command{command},
	}

	// Prepend command name to args
	fullArgs := append([]string{"test", command.Name}, args...)

	return app.Run(ctx, fullArgs)
}
