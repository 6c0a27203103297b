package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/riftlands/netcore/internal/config"
	"github.com/riftlands/netcore/pkg/gateway"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
		shard      int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the shard gateway",
		Long: `Run the shard gateway until interrupted.

The gateway listens for game traffic on the configured TCP port and
serves health, status, metrics, and WebSocket joins on the admin
endpoint. SIGINT or SIGTERM triggers a clean shutdown that
disconnects every session first.

Examples:
  netcore serve
  netcore serve --config=netcore.yaml
  netcore serve --port=9000 --shard=3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port, shard)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "netcore.yaml", "Path to the YAML configuration file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Game-traffic port (overrides config)")
	cmd.Flags().IntVarP(&shard, "shard", "s", -1, "Shard id (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port, shard int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Listen.Port = port
	}
	if shard >= 0 {
		cfg.Shard = shard
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cfg.Logger()

	g, err := gateway.New(&gateway.Config{
		ListenAddr: cfg.ListenAddr(),
		AdminAddr:  cfg.AdminAddr(),
		ShardID:    cfg.Shard,
		TickRate:   cfg.Clock.TickRate,
		Transport:  cfg.TransportConfig(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting netcore",
		"version", version,
		"config", configPath,
		"shard", cfg.Shard)
	return g.Run(ctx)
}
