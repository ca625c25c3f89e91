package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/lingprofile/internal/config"
	"github.com/okian/lingprofile/internal/server"
	"github.com/okian/lingprofile/pkg/logger"
)

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if err := server.InitLogging(cfg); err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return server.New(cfg).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the configured one")
	return cmd
}
