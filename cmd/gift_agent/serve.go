package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/gift-recommender/internal/config"
	"github.com/jonathan/gift-recommender/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		port        int
		provider    string
		concurrency int
		mode        string
		maxRetries  int
		apiKey      string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start an HTTP server that exposes POST /recommend for analyzing pasted chat exports.

Server limits are read from PORT, RATE_LIMIT_PER_MINUTE, RATE_LIMIT_BURST, REQUEST_TIMEOUT_SECONDS and MAX_REQUEST_BYTES.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			serverCfg, err := config.NewServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server config: %w", err)
			}
			if cmd.Flags().Changed("port") {
				serverCfg.Port = port
			}

			cfg := config.Config{
				Provider:    provider,
				Concurrency: concurrency,
				Mode:        mode,
				MaxRetries:  maxRetries,
				APIKey:      apiKey,
				Verbose:     verbose,
			}
			cfg = cfg.MergeWithDefaults(config.Config{})
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			analyzer, client, err := buildAnalyzer(ctx, cfg, logger, nil)
			if err != nil {
				return err
			}
			defer client.Close() //nolint:errcheck

			srv := server.New(*serverCfg, analyzer, logger)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default: PORT env var or 8000)")
	cmd.Flags().StringVar(&provider, "provider", "", "Model provider: gemini (default) or openai")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Parallel extraction calls per request")
	cmd.Flags().StringVar(&mode, "mode", "", "Signal categories to keep: full (default) or wishes_only")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 2, "Extra attempts for rate-limited or unavailable provider calls")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Provider API key (optional, defaults to the provider's env var)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	return cmd
}
