// Package kb implements the interactive command loop of together:
// every line typed on stdin is one single-key command acting on the
// running processes.
package kb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/nixpare/together/internal/config"
	"github.com/nixpare/together/internal/terminal"
	"github.com/nixpare/together/manager"
	"github.com/nixpare/together/process"
)

// Supervisor is the part of manager.Handle the loop drives
type Supervisor interface {
	Spawn(command string) (process.ID, error)
	Kill(id process.ID) error
	KillAdvanced(id process.ID, sig process.Signal) error
	KillAll() error
	List() ([]process.ID, error)
	SetMute(id process.ID, muted bool) error
	Restart(id process.ID, command string) (process.ID, error)
}

var _ Supervisor = (*manager.Handle)(nil)

// errQuit ends the loop
var errQuit = errors.New("quit")

// ErrNoTerminal is returned by the keys that need a prompt when the
// loop has no Prompter
var ErrNoTerminal = errors.New("no interactive terminal to prompt on")

// Loop reads commands and turns them into manager requests
type Loop struct {
	sup      Supervisor
	prompter terminal.Prompter
	config   *config.Config
	out      io.Writer

	awaitingQuit bool
	lastCommand  string
}

// Option configures a Loop
type Option func(*Loop)

// WithOutput sets where the configuration dump is written
func WithOutput(w io.Writer) Option {
	return func(l *Loop) { l.out = w }
}

// New creates a Loop over sup. cfg provides the commands and recipes
// offered by the trigger keys. With a nil prompter the keys that ask
// for a choice fail with ErrNoTerminal.
func New(sup Supervisor, prompter terminal.Prompter, cfg *config.Config, opts ...Option) *Loop {
	l := &Loop{
		sup:      sup,
		prompter: prompter,
		config:   cfg,
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run reads r line by line until the user quits, r is exhausted or
// the manager is gone. Failed commands are logged and the loop goes on.
func (l *Loop) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		err := l.handle(line)
		switch {
		case err == nil:
		case errors.Is(err, errQuit), errors.Is(err, manager.ErrClosed):
			return nil
		case errors.Is(err, terminal.ErrCanceled):
			terminal.Log("Canceled")
		default:
			terminal.LogErr("%v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

func (l *Loop) handle(key string) error {
	if key != "q" {
		l.awaitingQuit = false
	}

	switch key {
	case "h", "?":
		return l.help()
	case "q":
		return l.quit()
	case "l":
		return l.list()
	case "d":
		return l.dump()
	case "k":
		return l.kill()
	case "K":
		return l.killWithSignal()
	case "r":
		return l.restart()
	case "t":
		return l.trigger()
	case ".":
		return l.retrigger()
	case "b":
		return l.batch()
	case "z":
		return l.switchRecipe()
	case "m":
		return l.mute(true)
	case "u":
		return l.mute(false)
	default:
		terminal.LogErr("Unknown command: '%s'", key)
		terminal.Log("Press 'h' or '?' for help")
		return nil
	}
}

var helpLines = []string{
	"Press 't' to trigger a one-time run",
	"Press '.' to re-trigger the last one-time run",
	"Press 'b' to batch trigger commands by recipe",
	"Press 'z' to switch to running a single recipe",
	"Press 'k' to kill a running command",
	"Press 'K' to send a chosen signal to a running command",
	"Press 'r' to restart a running command",
	"Press 'm' to mute the output of a running command",
	"Press 'u' to unmute a running command",
	"Press 'l' to list all running commands",
	"Press 'd' to dump the current configuration",
	"Press 'h' or '?' to show this help message",
	"Press 'q' to stop",
}

func (l *Loop) help() error {
	terminal.Log("[help]")
	terminal.Println("together is a tool to run multiple commands in parallel selectively by an interactive prompt.")
	terminal.Println()
	for _, line := range helpLines {
		terminal.Println(line)
	}
	terminal.Println()

	terminal.Log("[status]")
	ids, err := l.sup.List()
	if err != nil {
		terminal.Println("together is running in an unknown state")
		return err
	}
	terminal.Printf("together is running %d commands in parallel:\n", len(ids))
	for _, id := range ids {
		terminal.Println("  " + id.String())
	}
	return nil
}

func (l *Loop) quit() error {
	if !l.awaitingQuit {
		terminal.Log("Press 'q' again to quit together")
		l.awaitingQuit = true
		return nil
	}

	terminal.Log("Quitting together...")
	if err := l.sup.KillAll(); err != nil {
		return err
	}
	return errQuit
}

func (l *Loop) list() error {
	ids, err := l.sup.List()
	if err != nil {
		return err
	}
	for _, id := range ids {
		terminal.Println(id.String())
	}
	return nil
}

func (l *Loop) dump() error {
	ids, err := l.sup.List()
	if err != nil {
		return err
	}
	running := make([]string, len(ids))
	for i, id := range ids {
		running[i] = id.Command
	}
	return config.Dump(l.out, l.config.WithRunning(running))
}

func (l *Loop) selectOne(prompt string, items []string) (int, error) {
	if l.prompter == nil {
		return 0, ErrNoTerminal
	}
	return l.prompter.SelectOne(prompt, items)
}

func (l *Loop) selectMany(prompt string, items []string) ([]int, error) {
	if l.prompter == nil {
		return nil, ErrNoTerminal
	}
	return l.prompter.SelectMany(prompt, items)
}

// selectProcess prompts for one of the running processes
func (l *Loop) selectProcess(prompt string) (process.ID, error) {
	ids, err := l.sup.List()
	if err != nil {
		return process.ID{}, err
	}
	if len(ids) == 0 {
		terminal.Log("No running commands")
		return process.ID{}, terminal.ErrCanceled
	}

	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = id.String()
	}
	i, err := l.selectOne(prompt, labels)
	if err != nil {
		return process.ID{}, err
	}
	return ids[i], nil
}

func (l *Loop) kill() error {
	id, err := l.selectProcess("Pick command to kill")
	if err != nil {
		return err
	}
	return l.sup.Kill(id)
}

func (l *Loop) killWithSignal() error {
	id, err := l.selectProcess("Pick command to signal")
	if err != nil {
		return err
	}

	signals := process.Signals()
	names := make([]string, len(signals))
	for i, sig := range signals {
		names[i] = sig.String()
	}
	i, err := l.selectOne("Pick the signal to send to "+id.String(), names)
	if err != nil {
		return err
	}
	return l.sup.KillAdvanced(id, signals[i])
}

func (l *Loop) restart() error {
	id, err := l.selectProcess("Pick command to restart")
	if err != nil {
		return err
	}
	_, err = l.sup.Restart(id, id.Command)
	return err
}

func (l *Loop) trigger() error {
	run := l.config.Run
	if len(run.Commands) == 0 {
		terminal.Log("No commands configured")
		return nil
	}

	i, err := l.selectOne("Pick command to run", run.Labels())
	if err != nil {
		return err
	}

	command := run.Commands[i].Command
	if _, err := l.sup.Spawn(command); err != nil {
		return err
	}
	l.lastCommand = command
	return nil
}

func (l *Loop) retrigger() error {
	if l.lastCommand == "" {
		terminal.Log("No last command to re-trigger")
		return nil
	}
	_, err := l.sup.Spawn(l.lastCommand)
	return err
}

func (l *Loop) batch() error {
	recipes := config.UniqueRecipes(l.config.Run)
	if len(recipes) == 0 {
		terminal.Log("No recipes configured")
		return nil
	}

	picked, err := l.selectMany("Select one or more recipes to start running", recipes)
	if err != nil {
		return err
	}

	selected := make([]string, len(picked))
	for i, p := range picked {
		selected[i] = recipes[p]
	}
	return l.spawnAll(config.CommandsByRecipes(l.config.Run, selected))
}

// switchRecipe kills every process outside the chosen recipe and
// starts the recipe commands that are not running yet
func (l *Loop) switchRecipe() error {
	recipes := config.UniqueRecipes(l.config.Run)
	if len(recipes) == 0 {
		terminal.Log("No recipes configured")
		return nil
	}

	i, err := l.selectOne("Select a recipe to start running (this stops all other commands)", recipes)
	if err != nil {
		return err
	}
	commands := config.CommandsByRecipes(l.config.Run, []string{recipes[i]})

	ids, err := l.sup.List()
	if err != nil {
		return err
	}

	var running []string
	for _, id := range ids {
		if slices.Contains(commands, id.Command) {
			running = append(running, id.Command)
			continue
		}
		if err := l.sup.Kill(id); err != nil && !errors.Is(err, manager.ErrNoSuchProcess) {
			return err
		}
	}

	var missing []string
	for _, c := range commands {
		if !slices.Contains(running, c) {
			missing = append(missing, c)
		}
	}
	return l.spawnAll(missing)
}

func (l *Loop) spawnAll(commands []string) error {
	var errs []error
	for _, c := range commands {
		if _, err := l.sup.Spawn(c); err != nil {
			if errors.Is(err, manager.ErrClosed) {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (l *Loop) mute(muted bool) error {
	prompt := "Pick command to mute"
	if !muted {
		prompt = "Pick command to unmute"
	}

	id, err := l.selectProcess(prompt)
	if err != nil {
		return err
	}
	return l.sup.SetMute(id, muted)
}
