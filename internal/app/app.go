// Package app wires a run of together: it starts the manager, installs
// the Ctrl-C handler, runs the startup commands, starts the selected
// commands and hands control to the input loop until the user quits.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nixpare/together/internal/config"
	"github.com/nixpare/together/internal/kb"
	"github.com/nixpare/together/internal/terminal"
	"github.com/nixpare/together/manager"
	"github.com/nixpare/together/process"
)

// Context is everything a run needs
type Context struct {
	Config *config.Config
	// OverrideCommands, when set, are started instead of asking the user
	OverrideCommands []string
	// Prompter asks which commands to start and answers the input loop
	// prompts. Without one every command is started and the prompting
	// keys report that there is no terminal.
	Prompter terminal.Prompter
	// Input feeds the interactive loop, os.Stdin when nil
	Input io.Reader
	// ManagerOptions are applied after the ones derived from Config
	ManagerOptions []manager.Option
}

var exit = os.Exit

// Start runs together until the user quits or the manager stops. Every
// process still alive is killed before Start returns.
func Start(c Context) error {
	opts := c.Config.Run

	managerOpts := []manager.Option{
		manager.WithRawMode(opts.Raw),
		manager.WithExitOnError(opts.ExitOnError),
		manager.WithQuitOnCompletion(opts.QuitOnCompletion),
		manager.WithWorkingDirectory(opts.WorkingDirectory),
	}
	h := manager.New(append(managerOpts, c.ManagerOptions...)...).Start()
	defer h.Close()

	stop := handleCtrlSignal(h.Subscribe())
	defer stop()

	selected, err := collectCommands(c)
	if err != nil {
		return err
	}

	if err := runStartupCommands(h.Subscribe(), opts.Startup); err != nil {
		return err
	}
	if opts.InitOnly {
		terminal.Log("Finished running startup commands, exiting...")
		return nil
	}

	for _, command := range selected {
		if _, err := h.Spawn(command); err != nil {
			if errors.Is(err, manager.ErrClosed) {
				return nil
			}
			terminal.LogErr("Could not start %s: %v", command, err)
		}
	}

	input := c.Input
	if input == nil {
		input = os.Stdin
	}
	loopErr := make(chan error, 1)
	go func() {
		loopErr <- kb.New(h.Subscribe(), c.Prompter, c.Config).Run(input)
	}()

	select {
	case err := <-loopErr:
		return err
	case <-h.Done():
		return nil
	}
}

// handleCtrlSignal makes the first Ctrl-C stop every process and the
// second one exit at once
func handleCtrlSignal(h *manager.Handle) (stop func()) {
	sigs, stopNotify := process.ListenForCTRLC()
	quit := make(chan struct{})
	go watchInterrupts(sigs, quit, h, exit)

	return func() {
		stopNotify()
		close(quit)
	}
}

func watchInterrupts(sigs <-chan os.Signal, quit <-chan struct{}, h *manager.Handle, exit func(int)) {
	pressed := false
	for {
		select {
		case <-quit:
			return
		case <-sigs:
		}

		if pressed {
			terminal.Log("Ctrl-C pressed again, exiting immediately...")
			exit(1)
			return
		}
		pressed = true

		terminal.Log("Ctrl-C pressed, stopping all processes...")
		if err := h.KillAll(); err != nil && !errors.Is(err, manager.ErrClosed) {
			terminal.LogErr("Failed to stop all processes: %v", err)
		}
	}
}

func collectCommands(c Context) ([]string, error) {
	switch {
	case c.OverrideCommands != nil:
		terminal.Log("Running commands from configuration...")
		return c.OverrideCommands, nil
	case c.Config.Run.All || c.Prompter == nil:
		terminal.Log("Running all commands...")
		return c.Config.Run.CommandLines(), nil
	}

	run := c.Config.Run
	picked, err := c.Prompter.SelectMany("Select commands to run together", run.Labels())
	if errors.Is(err, terminal.ErrCanceled) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting commands: %w", err)
	}

	selected := make([]string, len(picked))
	for i, p := range picked {
		selected[i] = run.Commands[p].Command
	}
	return selected, nil
}

// runStartupCommands runs commands one after the other, each waiting
// for the previous one to exit
func runStartupCommands(h *manager.Handle, commands []string) error {
	if len(commands) == 0 {
		return nil
	}

	terminal.Log("Running startup commands...")
	for _, command := range commands {
		id, err := h.Spawn(command)
		if err != nil {
			return fmt.Errorf("startup command %q: %w", command, err)
		}
		done, err := h.Wait(id)
		switch {
		case errors.Is(err, manager.ErrNoSuchProcess):
			// already reaped
		case err != nil:
			return fmt.Errorf("startup command %q: %w", command, err)
		default:
			select {
			case <-done:
			case <-h.Done():
				return fmt.Errorf("startup command %q: %w", command, manager.ErrClosed)
			}
		}
		terminal.Log("Startup command '%s' completed", command)
	}
	return nil
}
