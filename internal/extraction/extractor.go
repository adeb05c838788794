// Package extraction turns chunks of messages into gift-relevant signal profiles using an LLM.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/gift-recommender/internal/chunking"
	"github.com/jonathan/gift-recommender/internal/llm"
	"github.com/jonathan/gift-recommender/internal/prompts"
	"github.com/jonathan/gift-recommender/internal/schemas"
	"github.com/jonathan/gift-recommender/internal/types"
)

// SchemaName is the name under which the profile schema is sent to providers
const SchemaName = "SignalProfile"

// Extractor runs one extraction call per chunk.
// A failed chunk yields an empty profile and an error; it never panics.
type Extractor struct {
	client    llm.Client
	opts      llm.CallOptions
	logger    *log.Logger
	validator *schemas.Validator
	schema    string
}

// ChunkResult is the outcome of extracting one chunk
type ChunkResult struct {
	Index   int
	Profile types.SignalProfile
	Err     error
}

// New creates an Extractor. When opts asks for a schema-shaped response and
// carries no schema, the provider-compliant SignalProfile schema is attached.
func New(client llm.Client, opts llm.CallOptions, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.Default()
	}
	if opts.Shape == llm.ShapeJSONSchema && opts.Schema == nil {
		opts.Schema = llm.GenerateSchema[types.SignalProfile]()
		opts.SchemaName = SchemaName
	}

	validator, err := schemas.SignalProfile()
	if err != nil {
		logger.Error("signal profile schema unavailable, skipping validation", "error", err)
	}

	schemaText := "{}"
	if reflected, err := llm.ReflectSchema[types.SignalProfile](); err == nil {
		if b, err := json.MarshalIndent(reflected, "", "  "); err == nil {
			schemaText = string(b)
		}
	}

	return &Extractor{
		client:    client,
		opts:      opts,
		logger:    logger,
		validator: validator,
		schema:    schemaText,
	}
}

// Options returns the call options used for every extraction request
func (e *Extractor) Options() llm.CallOptions {
	return e.opts
}

// BuildPrompt renders the extraction prompt for one chunk
func (e *Extractor) BuildPrompt(chunk chunking.Chunk) (string, error) {
	return prompts.Render(prompts.ExtractionFile, prompts.ExtractGiftSignals, map[string]string{
		"Chunk":  chunk.Render(),
		"Schema": e.schema,
	})
}

// Extract returns the signals found in one chunk.
// On any failure the profile is empty (never nil lists) and err says why.
func (e *Extractor) Extract(ctx context.Context, chunk chunking.Chunk) (types.SignalProfile, error) {
	prompt, err := e.BuildPrompt(chunk)
	if err != nil {
		return types.NewSignalProfile(), err
	}

	e.logger.Debug("extracting chunk", "chunk", chunk.Index, "messages", len(chunk.Messages), "model", e.opts.Model)

	text, err := e.client.Complete(ctx, prompt, e.opts)
	if err != nil {
		return types.NewSignalProfile(), &APICallError{
			Chunk:   chunk.Index,
			Message: "failed to generate content from LLM",
			Cause:   err,
		}
	}

	profile, err := e.Parse(text)
	if err != nil {
		return types.NewSignalProfile(), err
	}

	counts := profile.Counts()
	e.logger.Debug("chunk extracted", "chunk", chunk.Index,
		"wishes", counts.Wishes, "problems", counts.Problems,
		"enthusiasm", counts.Enthusiasm, "values", counts.Values)
	return profile, nil
}

// ExtractAll extracts every chunk with at most concurrency calls in flight.
// Results are in chunk order. Once ctx is done no new calls start and the
// remaining chunks report the context error.
func (e *Extractor) ExtractAll(ctx context.Context, chunks []chunking.Chunk, concurrency int) []ChunkResult {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]ChunkResult, len(chunks))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			results[i] = ChunkResult{Index: chunk.Index, Profile: types.NewSignalProfile(), Err: err}
			continue
		}
		i, chunk := i, chunk
		g.Go(func() error {
			profile, err := e.Extract(ctx, chunk)
			results[i] = ChunkResult{Index: chunk.Index, Profile: profile, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Parse reads model output as a signal profile in two stages: the whole
// text first, then the JSON found inside code fences or surrounding prose.
// Each candidate must decode and pass schema validation. Unknown keys are
// ignored and integral scores sent as strings or floats are accepted.
func (e *Extractor) Parse(text string) (types.SignalProfile, error) {
	trimmed := strings.TrimSpace(text)
	cleaned := llm.CleanJSONBlock(trimmed)
	candidates := lo.Uniq(lo.Compact([]string{trimmed, cleaned, llm.ExtractJSONValue(cleaned)}))
	if len(candidates) == 0 {
		return types.NewSignalProfile(), &ParseError{Message: "empty response"}
	}

	var firstErr, validationErr error
	for _, candidate := range candidates {
		profile, err := e.decode(candidate)
		if err == nil {
			return normalize(profile), nil
		}
		if firstErr == nil {
			firstErr = err
		}
		var ve *schemas.ValidationError
		if validationErr == nil && errors.As(err, &ve) {
			validationErr = err
		}
	}

	// A schema violation says more about the output than a syntax error does
	if validationErr != nil {
		return types.NewSignalProfile(), validationErr
	}
	return types.NewSignalProfile(), firstErr
}

// decode accepts candidate as-is first, then again with score fields
// rewritten as plain integers when the model sent "4" or 4.0.
func (e *Extractor) decode(candidate string) (types.SignalProfile, error) {
	profile, err := e.decodeExact(candidate)
	if err == nil {
		return profile, nil
	}
	if repaired, ok := coerceScores(candidate); ok {
		if profile, rerr := e.decodeExact(repaired); rerr == nil {
			return profile, nil
		}
	}
	return types.NewSignalProfile(), err
}

func (e *Extractor) decodeExact(candidate string) (types.SignalProfile, error) {
	var profile types.SignalProfile
	if err := json.Unmarshal([]byte(candidate), &profile); err != nil {
		return profile, &ParseError{Message: "failed to parse JSON response", Cause: err}
	}
	if e.validator != nil {
		if err := e.validator.ValidateString(candidate); err != nil {
			return profile, err
		}
	}
	return profile, nil
}
