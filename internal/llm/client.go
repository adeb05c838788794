package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is an abstraction over LLM providers: submit a prompt, get back text.
type Client interface {
	// Complete sends one prompt and returns the model's text output
	Complete(ctx context.Context, prompt string, opts CallOptions) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration.
// When config.MaxRetries > 0 the provider client is wrapped with retries.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var (
		client Client
		err    error
	)
	switch config.Provider {
	case ProviderOpenAI:
		client, err = NewOpenAIClient(apiKey)
	default:
		client, err = NewGeminiClient(ctx, apiKey)
	}
	if err != nil {
		return nil, err
	}

	if config.MaxRetries > 0 {
		client = NewRetryClient(client, config.MaxRetries, DefaultBackoff)
	}
	return client, nil
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client}, nil
}

// Complete generates content with the model and sampling settings in opts
func (c *GeminiClient) Complete(ctx context.Context, prompt string, opts CallOptions) (string, error) {
	if opts.Model == "" {
		return "", fmt.Errorf("no model configured")
	}

	model := c.client.GenerativeModel(opts.Model)
	configureGeminiModel(model, opts)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &CompletionError{Provider: ProviderGemini, Model: opts.Model, Cause: err}
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", &CompletionError{Provider: ProviderGemini, Model: opts.Model, Cause: err}
	}
	if opts.Shape != ShapeText {
		text = CleanJSONBlock(text)
	}
	return text, nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func configureGeminiModel(model *genai.GenerativeModel, opts CallOptions) {
	model.SetTemperature(opts.Temperature)
	if opts.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxOutputTokens))
	}
	switch opts.Shape {
	case ShapeJSON:
		model.ResponseMIMEType = "application/json"
	case ShapeJSONSchema:
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = geminiSchema(opts.Schema)
	}
}

var geminiTypes = map[string]genai.Type{
	"object":  genai.TypeObject,
	"array":   genai.TypeArray,
	"string":  genai.TypeString,
	"integer": genai.TypeInteger,
	"number":  genai.TypeNumber,
	"boolean": genai.TypeBoolean,
}

// geminiSchema converts a JSON Schema map into Gemini's schema subset.
// Keywords Gemini has no field for (additionalProperties, ranges) are dropped.
// It returns nil for a nil or untyped schema.
func geminiSchema(schema map[string]any) *genai.Schema {
	typeName, _ := schema[typeKey].(string)
	t, ok := geminiTypes[typeName]
	if !ok {
		return nil
	}

	out := &genai.Schema{Type: t}
	out.Description, _ = schema["description"].(string)

	if items, ok := schema[itemsKey].(map[string]any); ok {
		out.Items = geminiSchema(items)
	}
	if properties, ok := schema[propertiesKey].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(properties))
		for name, prop := range properties {
			propMap, ok := prop.(map[string]any)
			if !ok {
				continue
			}
			if converted := geminiSchema(propMap); converted != nil {
				out.Properties[name] = converted
			}
		}
	}

	switch required := schema[requiredKey].(type) {
	case []string:
		out.Required = append([]string{}, required...)
	case []any:
		for _, r := range required {
			if name, ok := r.(string); ok {
				out.Required = append(out.Required, name)
			}
		}
	}
	sort.Strings(out.Required)
	return out
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", ErrEmptyResponse
	}

	return strings.Join(parts, ""), nil
}
