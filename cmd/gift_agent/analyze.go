package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/gift-recommender/internal/chatlog"
	"github.com/jonathan/gift-recommender/internal/config"
	"github.com/jonathan/gift-recommender/internal/observability"
)

type analyzeOptions struct {
	configPath          string
	chat                string
	participant         string
	format              string
	budget              string
	chunkSize           int
	concurrency         int
	mode                string
	provider            string
	extractionModel     string
	recommendationModel string
	maxRetries          int
	apiKey              string
	verbose             bool
	out                 string
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a chat export and recommend gifts",
		Long: `Parses a chat export, extracts gift signals for one participant chunk by chunk, merges them and asks the model for gift ideas.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	// Config file flag (processed first)
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	cmd.Flags().StringVarP(&opts.chat, "chat", "c", "", "Path to exported chat transcript")
	cmd.Flags().StringVarP(&opts.participant, "participant", "p", "", "Name of the person to find gifts for, as it appears in the chat")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Chat export format: whatsapp (default) or instagram")
	cmd.Flags().StringVarP(&opts.budget, "budget", "b", "", `Budget constraint for the gift ideas (default "any")`)
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", 0, "Messages per extraction call (default 10)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Parallel extraction calls (default 1)")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "Signal categories to keep: full (default) or wishes_only")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "Model provider: gemini (default) or openai")
	cmd.Flags().StringVar(&opts.extractionModel, "extraction-model", "", "Override the extraction model")
	cmd.Flags().StringVar(&opts.recommendationModel, "recommendation-model", "", "Override the recommendation model")
	cmd.Flags().IntVar(&opts.maxRetries, "max-retries", 0, "Extra attempts for rate-limited or unavailable provider calls")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the JSON result to this file instead of stdout")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from GEMINI_API_KEY / OPENAI_API_KEY
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "Provider API key (optional, defaults to the provider's env var)")

	return cmd
}

// resolveAnalyzeConfig merges the config file, explicitly set flags and defaults
func resolveAnalyzeConfig(cmd *cobra.Command, opts *analyzeOptions) (config.Config, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if opts.configPath != "" {
		loadedCfg, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return config.Config{}, err
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("chat") {
		cfg.Chat = opts.chat
	}
	if flags.Changed("participant") {
		cfg.Participant = opts.participant
	}
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("budget") {
		cfg.Budget = opts.budget
	}
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = opts.chunkSize
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
	if flags.Changed("mode") {
		cfg.Mode = opts.mode
	}
	if flags.Changed("provider") {
		cfg.Provider = opts.provider
	}
	if flags.Changed("extraction-model") {
		cfg.ExtractionModel = opts.extractionModel
	}
	if flags.Changed("recommendation-model") {
		cfg.RecommendationModel = opts.recommendationModel
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = opts.maxRetries
	}
	if flags.Changed("api-key") {
		cfg.APIKey = opts.apiKey
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}

	// Step 3: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Config{})

	// Step 4: Validate required fields
	if cfg.Chat == "" {
		return config.Config{}, fmt.Errorf("--chat must be provided (via flag or config)")
	}
	if cfg.Participant == "" {
		return config.Config{}, fmt.Errorf("--participant must be provided (via flag or config)")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	cfg, err := resolveAnalyzeConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	if opts.configPath != "" {
		logger.Debug("loaded config", "path", opts.configPath)
	}

	var printer *observability.Printer
	if cfg.Verbose {
		printer = observability.NewPrinter(cmd.ErrOrStderr())
	}

	raw, err := chatlog.ReadFile(cfg.Chat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer, client, err := buildAnalyzer(ctx, cfg, logger, printer)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close model client", "error", err)
		}
	}()

	result, err := analyzer.AnalyzeChat(ctx, raw, cfg.Participant, cfg.Format, cfg.Budget, cfg.ChunkSize)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if len(result.Diagnostics) > 0 {
		logger.Warn("analysis finished with diagnostics", "count", len(result.Diagnostics))
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if opts.out == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return err
	}
	if err := os.WriteFile(opts.out, append(output, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Found %d gift ideas\nOutput: %s\n", len(result.GiftIdeas), opts.out)
	return nil
}
