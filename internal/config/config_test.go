package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConfig() *Config {
	return &Config{
		Run: RunOptions{
			Commands: []Command{
				{Command: "npm run dev", Alias: "web", Recipes: []string{"frontend"}},
				{Command: "go run ./api", Recipes: []string{"backend", "frontend"}},
				{Command: "redis-server", Recipes: []string{"backend"}},
				{Command: "make docs"},
			},
			Startup:          []string{"make deps"},
			QuitOnCompletion: true,
		},
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "together.toml")
	data := `running = [1]

[run]
startup = ["make deps"]
exit_on_error = true

[[run.commands]]
command = "npm run dev"
alias = "web"
recipes = ["frontend"]

[[run.commands]]
command = "go run ./api"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.True(t, c.Run.ExitOnError)
	assert.False(t, c.Run.All)
	assert.Equal(t, []string{"make deps"}, c.Run.Startup)
	require.Len(t, c.Run.Commands, 2)
	assert.Equal(t, "web", c.Run.Commands[0].String())
	assert.Equal(t, "go run ./api", c.Run.Commands[1].String())
	assert.Equal(t, []string{"go run ./api"}, c.RunningCommands())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "together.yaml")
	data := `run:
  raw: true
  commands:
    - command: redis-server
      recipes: [backend]
running: [0, 7]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.True(t, c.Run.Raw)
	assert.Equal(t, []string{"redis-server"}, c.Run.CommandLines())
	assert.Equal(t, []string{"redis-server"}, c.RunningCommands())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[run\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveCreatesDirectoryAndLoadsBack(t *testing.T) {
	for _, name := range []string{"nested/together.toml", "nested/together.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := sampleConfig().WithRunning([]string{"redis-server"})

			require.NoError(t, Save(path, want))
			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestWithRunning(t *testing.T) {
	c := sampleConfig()

	out := c.WithRunning([]string{"make docs", "npm run dev", "unknown"})
	assert.Equal(t, []int{0, 3}, out.Running)
	assert.Nil(t, c.Running)
	assert.Equal(t, []string{"npm run dev", "make docs"}, out.RunningCommands())
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, sampleConfig().WithRunning([]string{"make docs"})))

	out := buf.String()
	assert.Contains(t, out, "Configuration:")
	assert.Contains(t, out, `command = "npm run dev"`)
	assert.Contains(t, out, "running = [3]")
}

func TestFromCommandLines(t *testing.T) {
	o := RunOptions{Commands: FromCommandLines([]string{"a", "b"})}
	assert.Equal(t, []string{"a", "b"}, o.CommandLines())
	assert.Equal(t, []string{"a", "b"}, o.Labels())
}
