// Package llm provides centralized LLM configuration and client abstractions.
// Extraction and recommendation calls each carry their own model, temperature
// and output budget so callers never hard-code model names.
package llm

// Task identifies which pipeline stage a completion call serves
type Task string

const (
	// TaskExtraction pulls structured signals out of one chunk of messages
	TaskExtraction Task = "extraction"
	// TaskRecommendation turns the merged profile into gift ideas
	TaskRecommendation Task = "recommendation"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider
	ProviderOpenAI Provider = "openai"
)

// ResponseShape tells the provider what kind of output to constrain the model to
type ResponseShape string

const (
	// ShapeText requests free text
	ShapeText ResponseShape = "text"
	// ShapeJSON requests any JSON object
	ShapeJSON ResponseShape = "json"
	// ShapeJSONSchema requests JSON conforming to CallOptions.Schema
	ShapeJSONSchema ResponseShape = "json_schema"
)

// CallOptions configures a single completion request
type CallOptions struct {
	Model           string         `json:"model"`
	Temperature     float32        `json:"temperature"`
	MaxOutputTokens int            `json:"max_output_tokens"`
	Shape           ResponseShape  `json:"response_shape,omitempty"`
	SchemaName      string         `json:"-"`
	Schema          map[string]any `json:"-"`
}

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Tasks    map[Task]CallOptions
	// MaxRetries is how many extra attempts a failed call gets (0 disables retries).
	MaxRetries int
}

// Default sampling parameters. Extraction favors consistency, recommendation favors variety.
const (
	ExtractionTemperature         float32 = 0.1
	RecommendationTemperature     float32 = 0.7
	ExtractionMaxOutputTokens     int     = 1500
	RecommendationMaxOutputTokens int     = 2000
)

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return newConfig(ProviderGemini, "gemini-2.5-flash-lite", "gemini-2.5-pro")
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return newConfig(ProviderOpenAI, "gpt-4o-mini", "gpt-4o")
}

// DefaultConfigFor returns the default configuration for a provider name,
// falling back to Gemini for unknown names.
func DefaultConfigFor(provider Provider) *Config {
	if provider == ProviderOpenAI {
		return DefaultOpenAIConfig()
	}
	return DefaultGeminiConfig()
}

func newConfig(provider Provider, extractionModel, recommendationModel string) *Config {
	return &Config{
		Provider: provider,
		Tasks: map[Task]CallOptions{
			TaskExtraction: {
				Model:           extractionModel,
				Temperature:     ExtractionTemperature,
				MaxOutputTokens: ExtractionMaxOutputTokens,
				Shape:           ShapeJSONSchema,
			},
			TaskRecommendation: {
				Model:           recommendationModel,
				Temperature:     RecommendationTemperature,
				MaxOutputTokens: RecommendationMaxOutputTokens,
				Shape:           ShapeJSON,
			},
		},
	}
}

// ForTask returns the call options for a task.
// An unknown task falls back to the extraction options.
func (c *Config) ForTask(task Task) CallOptions {
	if opts, ok := c.Tasks[task]; ok {
		return opts
	}
	return c.Tasks[TaskExtraction]
}

// WithModel returns a new Config with a specific model for a task
func (c *Config) WithModel(task Task, model string) *Config {
	return c.withOptions(task, func(o *CallOptions) { o.Model = model })
}

// WithTemperature returns a new Config with a specific temperature for a task
func (c *Config) WithTemperature(task Task, temperature float32) *Config {
	return c.withOptions(task, func(o *CallOptions) { o.Temperature = temperature })
}

// WithMaxOutputTokens returns a new Config with a specific output budget for a task
func (c *Config) WithMaxOutputTokens(task Task, tokens int) *Config {
	return c.withOptions(task, func(o *CallOptions) { o.MaxOutputTokens = tokens })
}

func (c *Config) withOptions(task Task, mutate func(*CallOptions)) *Config {
	newConfig := &Config{
		Provider:   c.Provider,
		Tasks:      make(map[Task]CallOptions, len(c.Tasks)),
		MaxRetries: c.MaxRetries,
	}
	for k, v := range c.Tasks {
		newConfig.Tasks[k] = v
	}
	opts := newConfig.Tasks[task]
	mutate(&opts)
	newConfig.Tasks[task] = opts
	return newConfig
}
