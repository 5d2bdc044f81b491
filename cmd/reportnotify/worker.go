package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	reportnotify "github.com/kart-io/reportnotify"
	"github.com/kart-io/reportnotify/pkg/queue"
)

func newWorkerCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume queued deliveries from Redis",
		Long: `Consume queued deliveries from the configured Redis list.

Each job is attempted once. Failed deliveries are logged and dropped.
The worker stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			hub, err := reportnotify.New(cfg)
			if err != nil {
				return err
			}
			defer hub.Close(context.Background())

			source, err := queue.NewRedisSource(ctx, cfg.Redis, hub.Logger())
			if err != nil {
				return err
			}
			defer source.Close()

			return queue.NewWorker(source, hub.Registry(), hub.Logger()).Run(ctx)
		},
	}
}
