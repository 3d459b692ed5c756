package main

import (
	"context"

	"github.com/aretw0/dramaflow/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the chat API over REST, Server-Sent Events (/events) and WebSocket (/ws).
Every route is also available under /api. Prometheus metrics are on /metrics when enabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("redis") {
			cfg.RedisURL, _ = cmd.Flags().GetString("redis")
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		rt, err := cli.Build(sigCtx, cfg, logger, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		logger.Info("Engine ready",
			"provider", cfg.Provider,
			"model", cfg.ModelName(),
			"metrics", cfg.Metrics,
		)
		return cli.Serve(sigCtx, cli.NewHTTPServer(cfg, rt, logger), nil, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8000", "Address to listen on")
	serveCmd.Flags().String("redis", "", "Redis URL for cross-replica session locks (redis://host:port/db)")
}
