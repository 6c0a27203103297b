package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "netcore",
		Short: "Realm shard network core",
		Long: `netcore runs one realm shard's network core.

It accepts length-prefixed binary frames over TCP and WebSocket,
mints an identity for every peer, drives the simulation clock, and
broadcasts the server-time heartbeat each tick. Gameplay systems
attach their own frame handlers on top.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
