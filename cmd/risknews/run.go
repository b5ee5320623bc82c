package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"EnterpriseRiskNews/internal/app"
)

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and write the records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}

			application, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d records from %d items (%d dropped)\n",
				report.RunID, len(report.Records), report.Stats.ItemsSeen, report.Stats.Dropped())
			return nil
		},
	}
}
