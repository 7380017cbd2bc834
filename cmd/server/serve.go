package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kunalsingh7053/VyaparX/internal/platform/httpserver"
)

const shutdownGrace = 30 * time.Second

func serveCmd(opts *rootOptions) *cobra.Command {
	var modules []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, relay the outbox and run in-process consumers",
		Long: `Serve the orders and payments HTTP API.

With BROKER=memory the consuming modules (order confirmation, notifications,
seller dashboard) run in this process on the in-memory bus. With
BROKER=rabbitmq they consume their durable queues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, modules)
		},
	}
	cmd.Flags().StringSliceVar(&modules, "modules",
		[]string{moduleOrders, modulePayments, moduleNotifications, moduleSellerDashboard},
		"bounded contexts to host")
	return cmd
}

func runServe(ctx context.Context, opts *rootOptions, modules []string) error {
	hosted, err := parseModules(modules)
	if err != nil {
		return err
	}
	cfg, logger, err := load(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	mux := http.NewServeMux()
	runners, err := a.wire(ctx, hosted, mux)
	if err != nil {
		return err
	}

	serverCfg := httpserver.DefaultConfig()
	serverCfg.Port = cfg.HTTPPort
	server := httpserver.New(serverCfg, a.handler(mux), logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(ctx, shutdownGrace) })
	for _, run := range runners {
		g.Go(func() error { return run(ctx) })
	}

	logger.Info("serving",
		slog.Any("modules", modules),
		slog.String("store", cfg.Store),
		slog.String("broker", cfg.Broker))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
