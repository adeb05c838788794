// Package main provides the entry point for the Gift Recommender CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gift_agent",
		Short: "Gift Recommender CLI and HTTP API Server",
		Long: "Gift Recommender reads an exported chat, extracts what one participant wishes for, complains about, " +
			"gets excited by and values, then suggests personalized gifts.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd(), newParseChatCmd(), newServeCmd())
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
