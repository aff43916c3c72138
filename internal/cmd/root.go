// Package cmd provides the CLI commands of together.
package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/nixpare/together/internal/config"
	"github.com/nixpare/together/internal/terminal"
)

var rootCmd = &cobra.Command{
	Use:   "together",
	Short: "Run multiple commands in parallel selectively by an interactive prompt",
	Long: `together starts a set of long running commands side by side, labels
their output and lets you kill, restart and trigger them from the keyboard.

Press 'h' while it runs for the list of keys.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	noConfig   bool
)

var errNoConfig = errors.New("this command needs a configuration file, drop --no-config")

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default: "+config.FileName+" in the user config directory)")
	rootCmd.PersistentFlags().BoolVar(&noConfig, "no-config", false, "Never read or write a configuration file")
}

// Execute runs the root command and returns an exit code.
// The caller (main) should call os.Exit with this code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		terminal.LogErr("%v", err)
		return 1
	}
	return 0
}

// resolveConfigPath returns --config or the default location
func resolveConfigPath() (string, error) {
	if noConfig {
		return "", errNoConfig
	}
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}
