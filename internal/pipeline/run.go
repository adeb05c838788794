// Package pipeline sequences chunking, extraction, merging and recommendation for one analysis.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jonathan/gift-recommender/internal/chatlog"
	"github.com/jonathan/gift-recommender/internal/chunking"
	"github.com/jonathan/gift-recommender/internal/extraction"
	"github.com/jonathan/gift-recommender/internal/observability"
	"github.com/jonathan/gift-recommender/internal/signals"
	"github.com/jonathan/gift-recommender/internal/types"
)

// DefaultChunkSize is the number of messages per extraction call when none is given
const DefaultChunkSize = 10

// Extractor extracts signals from every chunk, one result per chunk in chunk order
type Extractor interface {
	ExtractAll(ctx context.Context, chunks []chunking.Chunk, concurrency int) []extraction.ChunkResult
}

// Recommender turns a merged profile into gift ideas
type Recommender interface {
	Recommend(ctx context.Context, profile types.SignalProfile, budget string) ([]types.GiftIdea, error)
}

// Options configures an Analyzer
type Options struct {
	// Concurrency caps parallel extraction calls; values below 1 mean sequential.
	Concurrency int
	Mode        signals.Mode
	Logger      *log.Logger
	// Printer receives verbose output; nil disables it.
	Printer    *observability.Printer
	OnProgress ProgressCallback
}

// Analyzer runs the gift analysis pipeline.
// It holds no per-request state and may serve concurrent runs.
type Analyzer struct {
	extractor   Extractor
	recommender Recommender
	opts        Options
}

// New creates an Analyzer
func New(extractor Extractor, recommender Recommender, opts Options) *Analyzer {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Mode == "" {
		opts.Mode = signals.ModeFull
	}
	return &Analyzer{extractor: extractor, recommender: recommender, opts: opts}
}

// Run chunks messages, extracts and merges signals, then asks for gift ideas.
//
// Only an invalid chunk size or a done context produce an error. Failed
// chunks and a failed recommendation call are recorded as diagnostics.
// Empty input is valid and still makes the recommendation call.
func (a *Analyzer) Run(ctx context.Context, messages []types.Message, budget string, chunkSize int) (*types.RecommendationResult, error) {
	runID := uuid.NewString()
	logger := a.opts.Logger.With("run", runID)

	chunks, err := chunking.Split(messages, chunkSize)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.emit(ctx, runID, StepChunk, CategoryAnalysis,
		fmt.Sprintf("Split %d messages into %d chunks of up to %d", len(messages), len(chunks), chunkSize), nil)
	if a.opts.Printer != nil {
		a.opts.Printer.PrintChunkPlan(len(messages), len(chunks), chunkSize)
	}

	results := a.extractor.ExtractAll(ctx, chunks, a.opts.Concurrency)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var diagnostics []types.Diagnostic
	acc := signals.NewAccumulator(a.opts.Mode)
	for _, result := range results {
		if result.Err != nil {
			logger.Warn("chunk extraction failed", "chunk", result.Index, "error", result.Err)
			diagnostics = append(diagnostics, types.Diagnostic{
				Stage:   types.StageExtraction,
				Chunk:   result.Index,
				Message: result.Err.Error(),
			})
		}
		acc.Merge(result.Profile)

		counts := result.Profile.Counts()
		a.emit(ctx, runID, StepExtract, CategoryAnalysis,
			fmt.Sprintf("Chunk %d/%d: %d signals", result.Index+1, len(chunks), counts.Total()), counts)
	}

	profile := acc.Profile()
	a.emit(ctx, runID, StepMerge, CategoryAnalysis,
		fmt.Sprintf("Merged profile holds %d signals", profile.Counts().Total()), profile)
	if a.opts.Printer != nil {
		a.opts.Printer.PrintSignalProfile(profile)
	}

	ideas, err := a.recommender.Recommend(ctx, profile, budget)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("recommendation failed", "error", err)
		diagnostics = append(diagnostics, types.Diagnostic{
			Stage:   types.StageRecommendation,
			Chunk:   -1,
			Message: err.Error(),
		})
	}
	if ideas == nil {
		ideas = []types.GiftIdea{}
	}
	a.emit(ctx, runID, StepRecommend, CategoryRecommendation,
		fmt.Sprintf("Generated %d gift ideas", len(ideas)), ideas)
	if a.opts.Printer != nil {
		a.opts.Printer.PrintGiftIdeas(ideas)
		a.opts.Printer.PrintDiagnostics(diagnostics)
	}

	notes, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize profile: %w", err)
	}

	a.emit(ctx, runID, StepComplete, CategoryRecommendation, "Analysis complete", nil)
	logger.Info("analysis complete", "chunks", len(chunks), "signals", profile.Counts().Total(),
		"ideas", len(ideas), "diagnostics", len(diagnostics))

	return &types.RecommendationResult{
		Notes:       string(notes),
		GiftIdeas:   ideas,
		Profile:     profile,
		Diagnostics: diagnostics,
	}, nil
}

// AnalyzeChat parses a raw transcript for participant and runs the pipeline on it.
// An unknown format is an input error.
func (a *Analyzer) AnalyzeChat(ctx context.Context, raw, participant, format, budget string, chunkSize int) (*types.RecommendationResult, error) {
	messages, stats, err := chatlog.ParseWithStats(format, raw, participant)
	if err != nil {
		return nil, err
	}
	a.opts.Logger.Debug("parsed chat", "format", stats.Format, "lines", stats.Lines,
		"messages", stats.Messages, "skipped", stats.Skipped)
	a.emit(ctx, "", StepParseChat, CategoryIngestion,
		fmt.Sprintf("Parsed %d messages from %s (%d lines skipped)", stats.Messages, participant, stats.Skipped), stats)

	return a.Run(ctx, messages, budget, chunkSize)
}

func (a *Analyzer) emit(ctx context.Context, runID, step, category, message string, content any) {
	event := ProgressEvent{
		Step:     step,
		Category: category,
		Message:  message,
		RunID:    runID,
		Content:  content,
	}
	if a.opts.OnProgress != nil {
		a.opts.OnProgress(event)
	}
	if cb := ProgressFromContext(ctx); cb != nil {
		cb(event)
	}
}
