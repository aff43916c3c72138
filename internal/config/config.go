// Package config holds the run options of together and their
// persisted form, a TOML (or YAML) file remembering the commands and
// which of them were running.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the default configuration file
const FileName = ".together.toml"

// Command is one command the user can start, with an optional alias
// shown in the prompts and the recipes it belongs to
type Command struct {
	Command string   `toml:"command" yaml:"command"`
	Alias   string   `toml:"alias,omitempty" yaml:"alias,omitempty"`
	Recipes []string `toml:"recipes,omitempty" yaml:"recipes,omitempty"`
}

func (c Command) String() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Command
}

// RunOptions are the options of a run, from the command line or from
// a configuration file
type RunOptions struct {
	Commands         []Command `toml:"commands" yaml:"commands"`
	Startup          []string  `toml:"startup,omitempty" yaml:"startup,omitempty"`
	All              bool      `toml:"all" yaml:"all"`
	ExitOnError      bool      `toml:"exit_on_error" yaml:"exit_on_error"`
	QuitOnCompletion bool      `toml:"quit_on_completion" yaml:"quit_on_completion"`
	Raw              bool      `toml:"raw" yaml:"raw"`
	InitOnly         bool      `toml:"init_only" yaml:"init_only"`
	WorkingDirectory string    `toml:"working_directory,omitempty" yaml:"working_directory,omitempty"`
}

// CommandLines returns the command text of every command
func (o RunOptions) CommandLines() []string {
	lines := make([]string, len(o.Commands))
	for i, c := range o.Commands {
		lines[i] = c.Command
	}
	return lines
}

// Labels returns what the prompts show for every command
func (o RunOptions) Labels() []string {
	labels := make([]string, len(o.Commands))
	for i, c := range o.Commands {
		labels[i] = c.String()
	}
	return labels
}

// FromCommandLines wraps plain command strings
func FromCommandLines(lines []string) []Command {
	cmds := make([]Command, len(lines))
	for i, l := range lines {
		cmds[i] = Command{Command: l}
	}
	return cmds
}

// Config is the persisted state: the run options plus the indexes
// into Run.Commands of the commands that were running
type Config struct {
	Run     RunOptions `toml:"run" yaml:"run"`
	Running []int      `toml:"running,omitempty" yaml:"running,omitempty"`
}

// RunningCommands resolves Running to command lines, skipping indexes
// out of range
func (c *Config) RunningCommands() []string {
	var cmds []string
	for _, i := range c.Running {
		if i >= 0 && i < len(c.Run.Commands) {
			cmds = append(cmds, c.Run.Commands[i].Command)
		}
	}
	return cmds
}

// WithRunning returns a copy of c whose Running lists the commands
// found in running
func (c *Config) WithRunning(running []string) *Config {
	out := *c
	out.Running = nil
	for i, cmd := range c.Run.Commands {
		for _, r := range running {
			if cmd.Command == r {
				out.Running = append(out.Running, i)
				break
			}
		}
	}
	return &out
}

// DefaultPath returns the configuration file in the user config directory
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, FileName), nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the configuration at path, TOML unless the extension
// says YAML. The file is read under a shared lock.
func Load(path string) (*Config, error) {
	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var c Config
	if isYAML(path) {
		err = yaml.Unmarshal(data, &c)
	} else {
		err = toml.Unmarshal(data, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &c, nil
}

// Save writes c to path under an exclusive lock, creating the parent
// directory if needed
func Save(path string, c *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	var buf bytes.Buffer
	if isYAML(path) {
		enc := yaml.NewEncoder(&buf)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
	} else if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Dump prints c as TOML
func Dump(w io.Writer, c *Config) error {
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w)
	return toml.NewEncoder(w).Encode(c)
}
