package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/lingprofile/internal/smoke"
	"github.com/okian/lingprofile/pkg/logger"
)

func newSmokeCommand() *cobra.Command {
	cfg := smoke.DefaultConfig()
	var deadline time.Duration

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Exercise a running service end to end",
		Long: `Generates random cases, saves them, applies a catalog test to each,
checks the conversion and analysis, then requests an export per case
(resubmitting each job id once to confirm de-duplication) and waits for
every export to finish.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(); err != nil {
				return err
			}
			if cfg.Verbose {
				_ = logger.SetLevelString("debug")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), deadline)
			defer cancel()

			stats, err := smoke.Run(ctx, cfg)
			if stats != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "saved %d cases, %d exports done, %d failed, %d rejected, %d mismatches in %s\n",
					stats.CasesSaved, stats.ExportsDone, stats.ExportsFailed, stats.ExportsRejected, stats.Mismatches,
					stats.Duration.Round(time.Millisecond))
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the service")
	f.IntVar(&cfg.Cases, "cases", cfg.Cases, "number of cases to generate")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of concurrent workers")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	f.StringVar(&cfg.Format, "format", cfg.Format, "export format: csv, json, html or png")
	f.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "delay between export status checks")
	f.BoolVar(&cfg.Verbose, "verbose", false, "log every case")
	f.DurationVar(&deadline, "deadline", 10*time.Minute, "abort the run after this long")
	return cmd
}
