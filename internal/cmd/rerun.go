package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nixpare/together/internal/config"
)

var rerunCmd = &cobra.Command{
	Use:   "rerun",
	Short: "Run again with the saved configuration",
	Long: `Start together with the options stored in the configuration file.
The commands recorded as running are started right away; without any
you pick them as usual.`,
	Args: cobra.NoArgs,
	RunE: runRerun,
}

var loadCmd = &cobra.Command{
	Use:   "load PATH",
	Short: "Run with the configuration at PATH",
	Long: `Same as rerun, reading the configuration from PATH. Paths ending in
.yaml or .yml are read as YAML, anything else as TOML.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(rerunCmd)
	rootCmd.AddCommand(loadCmd)
}

func runRerun(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	return startFrom(path)
}

func runLoad(cmd *cobra.Command, args []string) error {
	if noConfig {
		return errNoConfig
	}
	return startFrom(args[0])
}

func startFrom(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	return start(cfg, cfg.RunningCommands())
}
