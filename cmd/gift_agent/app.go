package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/jonathan/gift-recommender/internal/config"
	"github.com/jonathan/gift-recommender/internal/extraction"
	"github.com/jonathan/gift-recommender/internal/llm"
	"github.com/jonathan/gift-recommender/internal/observability"
	"github.com/jonathan/gift-recommender/internal/pipeline"
	"github.com/jonathan/gift-recommender/internal/recommend"
)

// newLLMClient is replaced in tests to avoid network calls
var newLLMClient = llm.NewClient

// newLogger returns the CLI logger. Verbose mode enables debug output.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "gift_agent",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// resolveAPIKey prefers the configured key over the provider's environment variable
func resolveAPIKey(cfg config.Config) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	envVar := cfg.APIKeyEnvVar()
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s environment variable or --api-key flag is required", envVar)
}

// buildAnalyzer wires the model client, extractor and recommender into a pipeline.
// The caller must Close the returned client.
func buildAnalyzer(ctx context.Context, cfg config.Config, logger *log.Logger, printer *observability.Printer) (*pipeline.Analyzer, llm.Client, error) {
	apiKey, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, nil, err
	}

	llmCfg := cfg.LLMConfig()
	client, err := newLLMClient(ctx, llmCfg, apiKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s client: %w", llmCfg.Provider, err)
	}

	extractor := extraction.New(client, llmCfg.ForTask(llm.TaskExtraction), logger)
	recommender := recommend.New(client, llmCfg.ForTask(llm.TaskRecommendation), logger)

	logger.Debug("analyzer ready",
		"provider", llmCfg.Provider,
		"extraction_model", extractor.Options().Model,
		"recommendation_model", recommender.Options().Model,
		"concurrency", cfg.Concurrency,
		"mode", cfg.SignalMode())

	analyzer := pipeline.New(extractor, recommender, pipeline.Options{
		Concurrency: cfg.Concurrency,
		Mode:        cfg.SignalMode(),
		Logger:      logger,
		Printer:     printer,
	})
	return analyzer, client, nil
}
