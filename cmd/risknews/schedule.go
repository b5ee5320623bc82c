package main

import (
	"github.com/spf13/cobra"

	"EnterpriseRiskNews/internal/app"
	"EnterpriseRiskNews/internal/infrastructure/scheduler"
)

func newScheduleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on the configured cron expression",
		Long:  `Runs the pipeline on scheduler.cronExpression in scheduler.timezone and serves Prometheus metrics on metrics.addr until interrupted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if err := scheduler.Validate(cfg.Scheduler.CronExpression); err != nil {
				return err
			}

			application, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Schedule(cmd.Context())
		},
	}
}
