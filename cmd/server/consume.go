package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func consumeCmd(opts *rootOptions) *cobra.Command {
	var modules []string
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Consume broker queues without serving HTTP",
		Long: `Run the queue consumers of the selected modules against RabbitMQ.

  vyaparx consume --modules notifications
  vyaparx consume --modules orders,sellerdashboard`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsume(cmd.Context(), opts, modules)
		},
	}
	cmd.Flags().StringSliceVar(&modules, "modules",
		[]string{moduleOrders, moduleNotifications, moduleSellerDashboard},
		"bounded contexts to host")
	return cmd
}

func runConsume(ctx context.Context, opts *rootOptions, modules []string) error {
	hosted, err := parseModules(modules)
	if err != nil {
		return err
	}
	if hosted[modulePayments] {
		return errors.New("payments has no consumers; host it with serve")
	}
	cfg, logger, err := load(opts)
	if err != nil {
		return err
	}
	if cfg.Broker != "rabbitmq" {
		return errors.New("consume requires BROKER=rabbitmq; with the in-memory broker use serve")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	runners, err := a.wire(ctx, hosted, nil)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, run := range runners {
		g.Go(func() error { return run(ctx) })
	}

	logger.Info("consuming", slog.Any("modules", modules))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume: %w", err)
	}
	logger.Info("consumers stopped")
	return nil
}
