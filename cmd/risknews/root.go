package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"EnterpriseRiskNews/internal/config"
	"EnterpriseRiskNews/internal/logging"
)

// options are the flags shared by run and schedule.
type options struct {
	configPath    string
	verbose       bool
	window        string
	budget        int
	workers       int
	termLimit     int
	termsPath     string
	blocklistPath string
	outPath       string
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&options{})
}

func buildRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "risknews",
		Short:         "Enterprise risk news scanner",
		Long:          `Queries the news feed for encoded enterprise-risk terms, filters and extracts the articles, scores their sentiment and writes the records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file (default $RISKNEWS_CONFIG)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	flags.StringVar(&opts.window, "window", "", "feed recency window, e.g. 6h, 1d, 7d")
	flags.IntVar(&opts.budget, "budget", 0, "maximum records per run, 0 for unlimited")
	flags.IntVar(&opts.workers, "workers", 0, "items processed concurrently per term")
	flags.IntVar(&opts.termLimit, "term-limit", 0, "only use the first N decoded terms")
	flags.StringVar(&opts.termsPath, "terms", "", "encoded search terms CSV")
	flags.StringVar(&opts.blocklistPath, "blocklist", "", "blocked sources CSV")
	flags.StringVar(&opts.outPath, "out", "", "output CSV path")

	root.AddCommand(newRunCmd(opts), newScheduleCmd(opts))
	return root
}

// load reads the configuration and applies the flags the user set.
func (o *options) load(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("window") {
		if _, err := config.ParseWindow(o.window); err != nil {
			return cfg, nil, err
		}
		cfg.Feed.Window = o.window
	}
	if flags.Changed("budget") {
		cfg.Pipeline.Budget = o.budget
	}
	if flags.Changed("workers") {
		if o.workers < 1 {
			return cfg, nil, fmt.Errorf("--workers must be at least 1")
		}
		cfg.Pipeline.Workers = o.workers
	}
	if flags.Changed("term-limit") {
		cfg.Pipeline.TermLimit = o.termLimit
	}
	if flags.Changed("terms") {
		cfg.Inputs.TermsPath = o.termsPath
	}
	if flags.Changed("blocklist") {
		cfg.Inputs.BlocklistPath = o.blocklistPath
	}
	if flags.Changed("out") {
		cfg.Output.CSVPath = o.outPath
	}

	cfg.Logging.Level = logging.Level(cfg.Logging.Level, o.verbose)
	return cfg, logging.New(cfg.Logging.Level, cfg.Logging.Format), nil
}
