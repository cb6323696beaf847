package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/projectx/pkg/config"
	"github.com/pseudomuto/projectx/pkg/consts"
	"github.com/stretchr/testify/require"
)

// RequireValidProject asserts that project-x.yml exists and loads, returning
// the loaded configuration
func RequireValidProject(t *testing.T, projectDir string) *config.Config {
	t.Helper()

	require.FileExists(t, filepath.Join(projectDir, consts.ConfigFile), "%s should exist", consts.ConfigFile)

	cfg, err := config.Load(projectDir)
	require.NoError(t, err, "Project configuration should be valid")

	return cfg
}

// RequireFileExists asserts that a file exists and optionally checks its content
func RequireFileExists(t *testing.T, path string, checks ...func(content string)) {
	t.Helper()

	require.FileExists(t, path, "File should exist: %s", path)

	if len(checks) > 0 {
		content, err := os.ReadFile(path)
		require.NoError(t, err, "Failed to read file: %s", path)

		contentStr := string(content)
		for _, check := range checks {
			check(contentStr)
		}
	}
}

// RequireFileContains returns a check function that verifies file contains text
func RequireFileContains(t *testing.T, expected string) func(string) {
	return func(content string) {
		require.Contains(t, content, expected, "File should contain: %s", expected)
	}
}

// RequireFileNotContains returns a check function that verifies file doesn't contain text
func RequireFileNotContains(t *testing.T, unexpected string) func(string) {
	return func(content string) {
		require.NotContains(t, content, unexpected, "File should not contain: %s", unexpected)
	}
}

// RequireNoFile asserts that a file does not exist
func RequireNoFile(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "File should not exist: %s", path)
}

// RequireError asserts that an error occurred and optionally checks the message
func RequireError(t *testing.T, err error, msgContains ...string) {
	t.Helper()

	require.Error(t, err, "Expected an error")

	for _, msg := range msgContains {
		require.Contains(t, err.Error(), msg, "Error message should contain: %s", msg)
	}
}
