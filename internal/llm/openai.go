package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// OpenAIClient implements Client using the OpenAI Responses API
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey string, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIClient{client: &client}, nil
}

// Complete sends the prompt as a single user message
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, opts CallOptions) (string, error) {
	if opts.Model == "" {
		return "", fmt.Errorf("no model configured")
	}

	resp, err := c.client.Responses.New(ctx, buildResponseParams(prompt, opts))
	if err != nil {
		return "", &CompletionError{Provider: ProviderOpenAI, Model: opts.Model, Cause: err}
	}

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return "", &CompletionError{Provider: ProviderOpenAI, Model: opts.Model, Cause: ErrEmptyResponse}
	}
	if opts.Shape != ShapeText {
		text = CleanJSONBlock(text)
	}
	return text, nil
}

// Close is a no-op; the OpenAI client holds no long-lived resources
func (c *OpenAIClient) Close() error {
	return nil
}

func buildResponseParams(prompt string, opts CallOptions) responses.ResponseNewParams {
	input := []responses.ResponseInputItemUnionParam{
		responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
	}
	params := responses.ResponseNewParams{
		Model:       opts.Model,
		Temperature: openai.Float(float64(opts.Temperature)),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: input,
		},
	}
	if opts.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(opts.MaxOutputTokens))
	}

	switch {
	case opts.Shape == ShapeJSONSchema && opts.Schema != nil:
		name := opts.SchemaName
		if name == "" {
			name = "Output"
		}
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   name,
					Schema: opts.Schema,
					Strict: openai.Bool(true),
					Type:   "json_schema",
				},
			},
		}
	case opts.Shape == ShapeJSON || opts.Shape == ShapeJSONSchema:
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
		}
	}
	return params
}
