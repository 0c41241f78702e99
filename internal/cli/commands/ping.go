package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leaporm/pkg/orm"
	"github.com/spf13/cobra"
)

// NewPingCommand creates the ping command.
func NewPingCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Open a connection to the configured target and ping it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := GetConfig(ctx)
			logger := GetLogger(ctx)
			r := GetRenderer(ctx)

			if cfg.Target == nil || cfg.Target.Type == "" {
				return errors.New("no target configured (set target.type in leaporm.yaml or pass --type)")
			}

			db, err := orm.Open(cfg.Target.ToAdapterConfig(), orm.WithLogger(logger))
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					logger.Warn("failed to close connection", slog.Any("error", err))
				}
			}()

			pingCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			if err := db.Ping(pingCtx); err != nil {
				return err
			}
			elapsed := time.Since(start)
			logger.Debug("ping succeeded", slog.String("dialect", db.Dialect().Name()), slog.Duration("elapsed", elapsed))
			r.Success("%s target is reachable (%s, connection %s)", cfg.Target.Type, elapsed.Round(time.Millisecond), db.State())
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Give up after this long")
	return cmd
}
