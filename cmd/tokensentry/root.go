package main

import (
	"context"

	"github.com/spf13/cobra"
)

// Execute runs the tokensentry CLI.
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:   "tokensentry",
		Short: "Solana token risk scoring and aggregation engine",
	}

	var configPath string
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(analyzeCmd(&configPath))
	return root.ExecuteContext(ctx)
}
