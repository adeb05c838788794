package pipeline

import "context"

// Step names reported in progress events
const (
	StepParseChat = "parse_chat"
	StepChunk     = "chunk"
	StepExtract   = "extract_chunk"
	StepMerge     = "merge"
	StepRecommend = "recommend"
	StepComplete  = "complete"
)

// Step categories reported in progress events
const (
	CategoryIngestion      = "ingestion"
	CategoryAnalysis       = "analysis"
	CategoryRecommendation = "recommendation"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

type progressKey struct{}

// WithProgress returns a context that reports the progress of any analysis run
// with it to cb, in addition to the Analyzer's own OnProgress callback.
func WithProgress(ctx context.Context, cb ProgressCallback) context.Context {
	return context.WithValue(ctx, progressKey{}, cb)
}

// ProgressFromContext returns the callback attached by WithProgress, or nil
func ProgressFromContext(ctx context.Context) ProgressCallback {
	cb, _ := ctx.Value(progressKey{}).(ProgressCallback)
	return cb
}
