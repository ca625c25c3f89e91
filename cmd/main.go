package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/lingprofile/internal/config"
	"github.com/okian/lingprofile/internal/server"
	"github.com/okian/lingprofile/pkg/logger"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := server.InitLogging(cfg); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := server.New(cfg).Run(ctx); err != nil {
		logger.Get().Error(ctx, "server exited", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
