package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nixpare/together/internal/app"
	"github.com/nixpare/together/internal/config"
	"github.com/nixpare/together/internal/terminal"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- COMMAND...",
	Short: "Run commands together",
	Long: `Run the given commands in parallel. Unless --all is set you pick
which ones to start.

Examples:
  together run -- "npm run dev" "go run ./cmd/api"
  together run -a -e -- "make watch" "make serve"
  together run --save -s "make deps" -- "npm run dev"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var (
	runAll              bool
	runExitOnError      bool
	runQuitOnCompletion bool
	runRaw              bool
	runInitOnly         bool
	runSave             bool
	runCwd              string
	runStartup          []string
)

func init() {
	runCmd.Flags().BoolVarP(&runAll, "all", "a", false, "Run all commands without prompting")
	runCmd.Flags().BoolVarP(&runExitOnError, "exit-on-error", "e", false, "Kill everything once a command exits with a non-zero status")
	runCmd.Flags().BoolVarP(&runQuitOnCompletion, "quit-on-completion", "q", false, "Quit once all commands have completed")
	runCmd.Flags().BoolVarP(&runRaw, "raw", "r", false, "Let commands write to the terminal directly")
	runCmd.Flags().StringVarP(&runCwd, "cwd", "d", "", "Working directory of the commands")
	runCmd.Flags().StringArrayVarP(&runStartup, "startup", "s", nil, "Command to run to completion before the others (repeatable)")
	runCmd.Flags().BoolVar(&runInitOnly, "init-only", false, "Exit after the startup commands")
	runCmd.Flags().BoolVar(&runSave, "save", false, "Save these options to the configuration file")

	rootCmd.AddCommand(runCmd)
}

func runOptions(commands []string) config.RunOptions {
	return config.RunOptions{
		Commands:         config.FromCommandLines(commands),
		Startup:          runStartup,
		All:              runAll,
		ExitOnError:      runExitOnError,
		QuitOnCompletion: runQuitOnCompletion,
		Raw:              runRaw,
		InitOnly:         runInitOnly,
		WorkingDirectory: runCwd,
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := &config.Config{Run: runOptions(args)}

	if runSave {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		terminal.Log("Saved configuration to %s", path)
	}

	return start(cfg, nil)
}

// start runs together with cfg. override replaces the command
// selection when not empty.
func start(cfg *config.Config, override []string) error {
	c := app.Context{Config: cfg}
	if len(override) > 0 {
		c.OverrideCommands = override
	}
	if terminal.IsInteractive() {
		c.Prompter = terminal.HuhPrompter{}
	}

	if err := app.Start(c); err != nil {
		return fmt.Errorf("running together: %w", err)
	}
	return nil
}
