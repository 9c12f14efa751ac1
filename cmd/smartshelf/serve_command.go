package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"smartshelf/internal/catalog"
	"smartshelf/internal/daemon"
	"smartshelf/internal/hardware"
	"smartshelf/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, logFile, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logFile.Close()

			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			trigger, err := hardware.Select(cfg, logger)
			if err != nil {
				_ = store.Close()
				return err
			}

			d, err := daemon.New(cfg, store, trigger, logger)
			if err != nil {
				_ = trigger.Close()
				_ = store.Close()
				return err
			}
			defer d.Close()

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			if err := d.Run(runCtx); err != nil && runCtx.Err() == nil {
				return err
			}
			if cmd.Context().Err() != nil {
				return context.Canceled
			}
			return nil
		},
	}
}
