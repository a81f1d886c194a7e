package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/phishing-detector/internal/config"
)

const configPathEnv = "CONFIG_PATH"

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "phishing-detector",
		Short:         "Classify URLs as phishing, suspicious or legitimate",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the YAML config file (defaults to $"+configPathEnv+")")

	cmd.AddCommand(
		newServeCmd(opts),
		newAnalyzeCmd(opts),
		newStatsCmd(opts),
		newMigrateCmd(opts),
	)

	return cmd
}

// loadConfig reads the file named by --config or CONFIG_PATH. Without either
// the built-in defaults are used.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path == "" {
		return config.Default(), nil
	}

	return config.Load(path)
}
