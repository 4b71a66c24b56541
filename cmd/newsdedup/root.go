package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"NewsDedup/internal/app"
	"NewsDedup/internal/config"
	"NewsDedup/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	configPath string
	dryRun     bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "newsdedup",
		Short: "Remove duplicate news records",
		Long: `newsdedup collapses duplicate rows of the news table in two stages:
records sharing a link (after dropping links listed in the rejection archive),
then records sharing title and portal. Each stage writes a JSON audit report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config (default $NEWSDEDUP_CONFIG)")
	root.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "decide and report without deleting")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Find duplicates, then run every enabled stage",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runClean(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "find",
			Short: "Report duplicated links without deleting anything",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runFind(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "newsdedup %s (commit: %s)\n", version, commit)
			},
		},
	)
	return root
}

// setup resolves configuration once and opens the application.
func setup(ctx context.Context, opts *rootOptions) (*app.Application, *slog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		logging.New("error", "text", nil).Error("configuration rejected", "error", err)
		return nil, nil, err
	}
	if opts.dryRun {
		cfg.DryRun = true
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, nil)
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("cannot start", "error", err)
		return nil, nil, err
	}
	return application, logger, nil
}

func runClean(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	application, logger, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer application.Close()

	out := cmd.OutOrStdout()
	res, err := application.Run(ctx)
	printRun(out, res)
	if err != nil {
		logger.Error("run aborted", "error", err)
		return err
	}
	if sinkErr := res.SinkErrors(); sinkErr != nil {
		logger.Error("run finished with unsaved reports", "error", sinkErr)
		return sinkErr
	}
	printDone(out)
	return nil
}

func runFind(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	application, logger, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer application.Close()

	res, err := application.Find(ctx)
	if err != nil {
		logger.Error("find aborted", "error", err)
		return err
	}
	printFind(cmd.OutOrStdout(), res)
	if res.SinkErr != nil {
		return res.SinkErr
	}
	return nil
}
