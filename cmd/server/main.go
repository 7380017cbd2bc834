// Package main is the entry point for the commerce core. One binary hosts
// any subset of the bounded contexts; `serve` exposes the HTTP API and
// `consume` runs queue consumers only.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kunalsingh7053/VyaparX/internal/platform/config"
)

var Version = "dev"

type rootOptions struct {
	configPath string
}

func main() {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "vyaparx",
		Short:         "VyaparX order and payment core",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "optional YAML config file; environment variables override it")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(consumeCmd(opts))
	rootCmd.AddCommand(tokenCmd(opts))
	rootCmd.AddCommand(signCallbackCmd(opts))
	rootCmd.AddCommand(schemaCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load reads configuration and installs the process logger.
func load(opts *rootOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
