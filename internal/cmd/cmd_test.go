package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixpare/together/internal/config"
)

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		configPath, noConfig = "", false
		runAll, runExitOnError, runQuitOnCompletion = false, false, false
		runRaw, runInitOnly, runSave = false, false, false
		runCwd, runStartup = "", nil
	})
}

func TestRunFlagsBuildOptions(t *testing.T) {
	resetFlags(t)
	require.NoError(t, runCmd.ParseFlags([]string{
		"-a", "-e", "-q", "-d", "/srv", "-s", "make deps", "-s", "make db", "--init-only",
	}))

	got := runOptions([]string{"npm start", "go run ."})
	assert.Equal(t, config.RunOptions{
		Commands:         config.FromCommandLines([]string{"npm start", "go run ."}),
		Startup:          []string{"make deps", "make db"},
		All:              true,
		ExitOnError:      true,
		QuitOnCompletion: true,
		InitOnly:         true,
		WorkingDirectory: "/srv",
	}, got)
}

func TestResolveConfigPath(t *testing.T) {
	resetFlags(t)

	configPath = "/tmp/custom.toml"
	path, err := resolveConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.toml", path)

	noConfig = true
	_, err = resolveConfigPath()
	assert.ErrorIs(t, err, errNoConfig)
}

func TestRerunAndLoadRefuseNoConfig(t *testing.T) {
	for _, args := range [][]string{
		{"rerun", "--no-config"},
		{"load", "--no-config", "some.toml"},
	} {
		t.Run(args[0], func(t *testing.T) {
			resetFlags(t)
			rootCmd.SetArgs(args)
			assert.ErrorIs(t, rootCmd.Execute(), errNoConfig)
		})
	}
}

func TestLoadMissingConfig(t *testing.T) {
	resetFlags(t)
	rootCmd.SetArgs([]string{"load", filepath.Join(t.TempDir(), "missing.toml")})
	assert.ErrorIs(t, rootCmd.Execute(), os.ErrNotExist)
}

func TestRunNeedsCommands(t *testing.T) {
	resetFlags(t)
	rootCmd.SetArgs([]string{"run"})
	assert.Error(t, rootCmd.Execute())
}
