// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/gift-recommender/internal/chatlog"
	"github.com/jonathan/gift-recommender/internal/llm"
	"github.com/jonathan/gift-recommender/internal/signals"
)

// Defaults applied by MergeWithDefaults when neither the file nor the flags set a value
const (
	DefaultBudget      = "any"
	DefaultChunkSize   = 10
	DefaultConcurrency = 1
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Input
	Chat        string `json:"chat,omitempty"`        // Path to exported chat transcript
	Participant string `json:"participant,omitempty"` // Name of the person to analyze
	Format      string `json:"format,omitempty"`      // Transcript format: whatsapp or instagram

	// Analysis
	Budget      string `json:"budget,omitempty"`      // Budget constraint passed to the recommender
	ChunkSize   int    `json:"chunk_size,omitempty"`  // Messages per extraction call
	Concurrency int    `json:"concurrency,omitempty"` // Parallel extraction calls
	Mode        string `json:"signal_mode,omitempty"` // full or wishes_only

	// Model
	Provider            string `json:"provider,omitempty"`             // gemini or openai
	ExtractionModel     string `json:"extraction_model,omitempty"`     // Overrides the provider default
	RecommendationModel string `json:"recommendation_model,omitempty"` // Overrides the provider default
	MaxRetries          int    `json:"max_retries,omitempty"`          // Extra attempts for transient provider errors

	// Behavior
	APIKey  string `json:"api_key,omitempty"` // Provider API key
	Verbose bool   `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are checked by the CLI after merging with flags.
func (c *Config) Validate() error {
	if c.ChunkSize < 0 {
		return fmt.Errorf("config error: 'chunk_size' must be non-negative")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config error: 'max_retries' must be non-negative")
	}

	switch llm.Provider(c.Provider) {
	case "", llm.ProviderGemini, llm.ProviderOpenAI:
	default:
		return fmt.Errorf("config error: unknown provider %q", c.Provider)
	}

	if _, err := signals.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	switch chatlog.Format(c.Format) {
	case "", chatlog.FormatWhatsApp, chatlog.FormatInstagram:
	default:
		return fmt.Errorf("config error: %w", &chatlog.FormatError{Format: c.Format})
	}

	if c.Chat != "" {
		if _, err := os.Stat(c.Chat); os.IsNotExist(err) {
			return fmt.Errorf("config error: chat file not found: %s", c.Chat)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults,
// then from the package defaults for budget, chunk size and concurrency.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Chat == "" {
		result.Chat = defaults.Chat
	}
	if result.Participant == "" {
		result.Participant = defaults.Participant
	}
	if result.Format == "" {
		result.Format = defaults.Format
	}
	if result.Budget == "" {
		result.Budget = defaults.Budget
	}
	if result.Mode == "" {
		result.Mode = defaults.Mode
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.ExtractionModel == "" {
		result.ExtractionModel = defaults.ExtractionModel
	}
	if result.RecommendationModel == "" {
		result.RecommendationModel = defaults.RecommendationModel
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}

	// Int fields: use default if zero
	if result.ChunkSize == 0 {
		result.ChunkSize = defaults.ChunkSize
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}

	if result.Budget == "" {
		result.Budget = DefaultBudget
	}
	if result.ChunkSize == 0 {
		result.ChunkSize = DefaultChunkSize
	}
	if result.Concurrency == 0 {
		result.Concurrency = DefaultConcurrency
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// LLMConfig builds the model configuration for the selected provider,
// applying any model overrides.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.DefaultConfigFor(llm.Provider(c.Provider))
	if c.ExtractionModel != "" {
		cfg = cfg.WithModel(llm.TaskExtraction, c.ExtractionModel)
	}
	if c.RecommendationModel != "" {
		cfg = cfg.WithModel(llm.TaskRecommendation, c.RecommendationModel)
	}
	cfg.MaxRetries = c.MaxRetries
	return cfg
}

// SignalMode returns the parsed signal mode, falling back to full on bad input.
// Call Validate first to reject bad input instead.
func (c *Config) SignalMode() signals.Mode {
	mode, err := signals.ParseMode(c.Mode)
	if err != nil {
		return signals.ModeFull
	}
	return mode
}

// APIKeyEnvVar returns the environment variable holding the key for the selected provider
func (c *Config) APIKeyEnvVar() string {
	if llm.Provider(c.Provider) == llm.ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}
