// Package recommend turns a merged signal profile into gift ideas with one LLM call.
package recommend

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/jonathan/gift-recommender/internal/llm"
	"github.com/jonathan/gift-recommender/internal/types"
)

// Recommender asks the model for gift ideas
type Recommender struct {
	client llm.Client
	opts   llm.CallOptions
	logger *log.Logger
}

// New creates a Recommender that calls client with opts
func New(client llm.Client, opts llm.CallOptions, logger *log.Logger) *Recommender {
	if logger == nil {
		logger = log.Default()
	}
	return &Recommender{client: client, opts: opts, logger: logger}
}

// Options returns the call options used for recommendation requests
func (r *Recommender) Options() llm.CallOptions {
	return r.opts
}

// Recommend makes a single completion call and parses the ideas from it.
// The error is non-nil only when the call itself fails; unparseable output
// gives an empty list and a nil error.
func (r *Recommender) Recommend(ctx context.Context, profile types.SignalProfile, budget string) ([]types.GiftIdea, error) {
	prompt := BuildPrompt(profile, budget)

	r.logger.Debug("requesting recommendations", "model", r.opts.Model, "budget", budget, "signals", profile.Counts().Total())

	text, err := r.client.Complete(ctx, prompt, r.opts)
	if err != nil {
		return []types.GiftIdea{}, &APICallError{Message: "failed to generate recommendations", Cause: err}
	}

	ideas := ParseIdeas(text)
	if len(ideas) == 0 {
		r.logger.Warn("no gift ideas recovered from response", "length", len(text))
	} else {
		r.logger.Debug("parsed gift ideas", "count", len(ideas))
	}
	return ideas, nil
}
