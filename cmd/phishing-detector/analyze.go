package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/phishing-detector/internal/adapter/delivery/cli"
	"github.com/vadimbarashkov/phishing-detector/internal/analyzer"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		asJSON  bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "analyze URL...",
		Short: "Classify URLs locally without storing the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			a := analyzer.New(cfg.Analyzer)

			items := make([]cli.AnalyzedURL, 0, len(args))
			for _, u := range args {
				items = append(items, cli.AnalyzedURL{URL: u, Result: a.Analyze(u)})
			}

			p := cli.NewPrinter(cmd.OutOrStdout(), !noColor && !color.NoColor)
			if asJSON {
				return p.WriteAnalysesJSON(items)
			}
			return p.WriteAnalyses(items)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}
