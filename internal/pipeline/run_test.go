package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/gift-recommender/internal/chunking"
	"github.com/jonathan/gift-recommender/internal/extraction"
	"github.com/jonathan/gift-recommender/internal/llm"
	"github.com/jonathan/gift-recommender/internal/observability"
	"github.com/jonathan/gift-recommender/internal/recommend"
	"github.com/jonathan/gift-recommender/internal/signals"
	"github.com/jonathan/gift-recommender/internal/types"
)

const cannedExtraction = `{
	"direct_wish_signals": [
		{"item": "rock climbing gear", "quote": "I really want to get into rock climbing", "date": "2025-03-01", "sentiment_strength": 4}
	],
	"problems": [
		{"quote": "My hands are so dry", "date": "2025-04-05", "severity": 2}
	],
	"enthusiasm_signals": [],
	"values": []
}`

const cannedRecommendations = `{"recommendations": [
	{"name": "Intro bouldering class", "description": "A guided first session", "reasoning": "Wants to start climbing", "match_score": 5, "personalization": "Book a session for two"},
	{"name": "Climbing shoes", "description": "Beginner friendly shoes", "reasoning": "Starter gear", "match_score": 4, "personalization": "Pick their favorite color"},
	{"name": "Chalk bag", "description": "Chalk bag with belt", "reasoning": "Every climber needs one", "match_score": 4, "personalization": "Embroidered initials"},
	{"name": "Repair hand balm", "description": "Balm for dry hands", "reasoning": "Mentioned dry hands", "match_score": 4, "personalization": "Unscented version"},
	{"name": "Climbing guidebook", "description": "Local crags guide", "reasoning": "Explore outdoors", "match_score": 3, "personalization": "Mark a first route"}
]}`

// stubClient answers extraction and recommendation prompts with canned text
type stubClient struct {
	mu               sync.Mutex
	extractionCalls  int
	recommendCalls   int
	extractFunc      func(prompt string) (string, error)
	recommendFunc    func(prompt string) (string, error)
	recommendPrompts []string
}

func (s *stubClient) Complete(_ context.Context, prompt string, _ llm.CallOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.Contains(prompt, "DIRECT WISH SIGNALS") {
		s.recommendCalls++
		s.recommendPrompts = append(s.recommendPrompts, prompt)
		if s.recommendFunc != nil {
			return s.recommendFunc(prompt)
		}
		return cannedRecommendations, nil
	}

	s.extractionCalls++
	if s.extractFunc != nil {
		return s.extractFunc(prompt)
	}
	return cannedExtraction, nil
}

func (s *stubClient) Close() error {
	return nil
}

func newAnalyzer(client llm.Client, opts Options) *Analyzer {
	config := llm.DefaultConfig()
	extractor := extraction.New(client, config.ForTask(llm.TaskExtraction), nil)
	recommender := recommend.New(client, config.ForTask(llm.TaskRecommendation), nil)
	return New(extractor, recommender, opts)
}

func sampleMessages() []types.Message {
	return []types.Message{
		{Timestamp: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Text: "I really want to get into rock climbing"},
		{Timestamp: time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC), Text: "My hands are so dry"},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	client := &stubClient{}
	analyzer := newAnalyzer(client, Options{})

	result, err := analyzer.Run(context.Background(), sampleMessages(), "$20-$100", 10)
	require.NoError(t, err)

	assert.Equal(t, 1, client.extractionCalls)
	assert.Equal(t, 1, client.recommendCalls)
	assert.Contains(t, client.recommendPrompts[0], "$20-$100")

	require.NotEmpty(t, result.Profile.DirectWishSignals)
	assert.Contains(t, result.Profile.DirectWishSignals[0].Item, "climbing")

	require.Len(t, result.GiftIdeas, 5)
	assert.Equal(t, "Intro bouldering class", result.GiftIdeas[0].Name)
	assert.Equal(t, "Climbing guidebook", result.GiftIdeas[4].Name)
	assert.Empty(t, result.Diagnostics)

	var notes types.SignalProfile
	require.NoError(t, json.Unmarshal([]byte(result.Notes), &notes))
	assert.Equal(t, result.Profile, notes)
}

func TestRun_FaultTolerance(t *testing.T) {
	client := &stubClient{
		extractFunc: func(prompt string) (string, error) {
			switch {
			case strings.Contains(prompt, "second chunk"):
				return "", errors.New("503 Service Unavailable")
			case strings.Contains(prompt, "third chunk"):
				return "definitely not json", nil
			case strings.Contains(prompt, "first chunk"):
				return `{"direct_wish_signals": [{"item": "tent", "quote": "first chunk tent", "date": "2025-01-01", "sentiment_strength": 3}]}`, nil
			default:
				return `{"enthusiasm_signals": [{"topic": "camping", "quotes": ["fourth chunk fire"], "intensity": 4}]}`, nil
			}
		},
	}

	messages := []types.Message{
		{Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Text: "first chunk"},
		{Timestamp: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Text: "second chunk"},
		{Timestamp: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), Text: "third chunk"},
		{Timestamp: time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC), Text: "fourth chunk"},
	}

	result, err := newAnalyzer(client, Options{Concurrency: 2}).Run(context.Background(), messages, "$50", 1)
	require.NoError(t, err)

	assert.Equal(t, 4, client.extractionCalls)
	require.Len(t, result.Profile.DirectWishSignals, 1)
	assert.Equal(t, "tent", result.Profile.DirectWishSignals[0].Item)
	require.Len(t, result.Profile.EnthusiasmSignals, 1)
	assert.Equal(t, "camping", result.Profile.EnthusiasmSignals[0].Topic)

	require.Len(t, result.Diagnostics, 2)
	assert.Equal(t, types.StageExtraction, result.Diagnostics[0].Stage)
	assert.Equal(t, 1, result.Diagnostics[0].Chunk)
	assert.Equal(t, 2, result.Diagnostics[1].Chunk)
	assert.Len(t, result.GiftIdeas, 5)
}

func TestRun_EmptyInputStillRecommends(t *testing.T) {
	client := &stubClient{}

	result, err := newAnalyzer(client, Options{}).Run(context.Background(), nil, "any", 10)
	require.NoError(t, err)

	assert.Equal(t, 0, client.extractionCalls)
	require.Equal(t, 1, client.recommendCalls)
	assert.Equal(t, 4, strings.Count(client.recommendPrompts[0], recommend.NoneDetected))
	assert.True(t, result.Profile.IsEmpty())
	assert.Len(t, result.GiftIdeas, 5)
}

func TestRun_InvalidChunkSize(t *testing.T) {
	client := &stubClient{}

	result, err := newAnalyzer(client, Options{}).Run(context.Background(), sampleMessages(), "any", 0)
	require.Error(t, err)
	assert.Nil(t, result)

	var inputErr *chunking.InputError
	assert.True(t, errors.As(err, &inputErr))
	assert.Equal(t, 0, client.extractionCalls)
	assert.Equal(t, 0, client.recommendCalls)
}

func TestRun_CancelledContext(t *testing.T) {
	client := &stubClient{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newAnalyzer(client, Options{}).Run(ctx, sampleMessages(), "any", 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
	assert.Equal(t, 0, client.recommendCalls)
}

func TestRun_RecommendationFailureIsDiagnostic(t *testing.T) {
	client := &stubClient{
		recommendFunc: func(string) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}

	result, err := newAnalyzer(client, Options{}).Run(context.Background(), sampleMessages(), "any", 10)
	require.NoError(t, err)

	assert.NotNil(t, result.GiftIdeas)
	assert.Empty(t, result.GiftIdeas)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, types.StageRecommendation, result.Diagnostics[0].Stage)
	assert.Equal(t, -1, result.Diagnostics[0].Chunk)
	assert.NotEmpty(t, result.Profile.DirectWishSignals)
}

func TestRun_ProseRecommendationDegrades(t *testing.T) {
	client := &stubClient{
		recommendFunc: func(string) (string, error) {
			return "They would probably enjoy something outdoorsy.", nil
		},
	}

	result, err := newAnalyzer(client, Options{}).Run(context.Background(), sampleMessages(), "any", 10)
	require.NoError(t, err)
	assert.Empty(t, result.GiftIdeas)
	assert.Empty(t, result.Diagnostics)
}

func TestRun_WishesOnlyMode(t *testing.T) {
	result, err := newAnalyzer(&stubClient{}, Options{Mode: signals.ModeWishesOnly}).
		Run(context.Background(), sampleMessages(), "any", 10)
	require.NoError(t, err)

	assert.Len(t, result.Profile.DirectWishSignals, 1)
	assert.Empty(t, result.Profile.Problems)
}

func TestRun_MergesInChunkOrder(t *testing.T) {
	client := &stubClient{
		extractFunc: func(prompt string) (string, error) {
			if strings.Contains(prompt, "slow") {
				time.Sleep(20 * time.Millisecond)
				return `{"enthusiasm_signals": [{"topic": "music", "quotes": ["slow quote"], "intensity": 2}]}`, nil
			}
			return `{"enthusiasm_signals": [{"topic": "music", "quotes": ["fast quote"], "intensity": 5}]}`, nil
		},
	}
	messages := []types.Message{
		{Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Text: "slow"},
		{Timestamp: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Text: "fast"},
	}

	result, err := newAnalyzer(client, Options{Concurrency: 2}).Run(context.Background(), messages, "any", 1)
	require.NoError(t, err)

	require.Len(t, result.Profile.EnthusiasmSignals, 1)
	assert.Equal(t, []string{"slow quote", "fast quote"}, result.Profile.EnthusiasmSignals[0].Quotes)
	assert.Equal(t, 5, result.Profile.EnthusiasmSignals[0].Intensity)
}

func TestRun_ProgressEvents(t *testing.T) {
	var steps []string
	opts := Options{
		OnProgress: func(event ProgressEvent) {
			steps = append(steps, event.Step)
			assert.NotEmpty(t, event.RunID)
		},
	}

	_, err := newAnalyzer(&stubClient{}, opts).Run(context.Background(), sampleMessages(), "any", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{StepChunk, StepExtract, StepExtract, StepMerge, StepRecommend, StepComplete}, steps)
}

func TestRun_VerbosePrinter(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Printer: observability.NewPrinter(&buf)}

	_, err := newAnalyzer(&stubClient{}, opts).Run(context.Background(), sampleMessages(), "any", 10)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "CHUNK PLAN")
	assert.Contains(t, output, "SIGNAL PROFILE")
	assert.Contains(t, output, "GIFT IDEAS")
}

func TestAnalyzeChat(t *testing.T) {
	raw := "3/1/25, 09:16 - Sam: I really want to get into rock climbing\n" +
		"3/1/25, 09:17 - Alex: Nice!\n" +
		"4/5/25, 18:02 - Sam: My hands are so dry\n"

	var parseEvents int
	client := &stubClient{}
	opts := Options{OnProgress: func(event ProgressEvent) {
		if event.Step == StepParseChat {
			parseEvents++
		}
	}}

	result, err := newAnalyzer(client, opts).AnalyzeChat(context.Background(), raw, "Sam", "whatsapp", "$20-$100", 10)
	require.NoError(t, err)

	assert.Equal(t, 1, parseEvents)
	assert.Equal(t, 1, client.extractionCalls)
	assert.Len(t, result.GiftIdeas, 5)
}

func TestAnalyzeChat_UnknownFormat(t *testing.T) {
	client := &stubClient{}

	_, err := newAnalyzer(client, Options{}).AnalyzeChat(context.Background(), "x", "Sam", "fax", "any", 10)
	require.Error(t, err)
	assert.Equal(t, 0, client.recommendCalls)
}

func TestRun_ContextProgress(t *testing.T) {
	var fromOpts, fromCtx []string
	opts := Options{OnProgress: func(event ProgressEvent) { fromOpts = append(fromOpts, event.Step) }}
	ctx := WithProgress(context.Background(), func(event ProgressEvent) {
		fromCtx = append(fromCtx, event.Step)
	})

	_, err := newAnalyzer(&stubClient{}, opts).Run(ctx, sampleMessages(), "any", 10)
	require.NoError(t, err)

	assert.Equal(t, fromOpts, fromCtx)
	assert.Equal(t, []string{StepChunk, StepExtract, StepMerge, StepRecommend, StepComplete}, fromCtx)
}

func TestProgressFromContext_Unset(t *testing.T) {
	assert.Nil(t, ProgressFromContext(context.Background()))
}
