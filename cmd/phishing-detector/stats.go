package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/phishing-detector/internal/adapter/delivery/cli"
	"github.com/vadimbarashkov/phishing-detector/internal/app"
)

const maxStatsDays = 365

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var (
		days    int
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a statistics snapshot of the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 1 || days > maxStatsDays {
				return fmt.Errorf("--days must be within [1, %d]", maxStatsDays)
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			store, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			logger := app.NewLogger(cfg.Log, os.Stderr)
			uc := app.NewUseCase(cfg, store, logger.Logger, nil)

			p := cli.NewPrinter(cmd.OutOrStdout(), !noColor && !color.NoColor)
			return p.WriteSnapshot(uc.Statistics(cmd.Context(), days))
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "reporting window echoed in the snapshot")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}
