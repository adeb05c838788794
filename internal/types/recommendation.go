package types

// GiftIdea is one recommendation produced by the model
type GiftIdea struct {
	Name            string `json:"name"`
	Link            string `json:"link,omitempty"`
	Description     string `json:"description"`
	Reasoning       string `json:"reasoning,omitempty"`
	MatchScore      int    `json:"match_score,omitempty"`
	Personalization string `json:"personalization,omitempty"`
}

// Diagnostic stage names
const (
	StageExtraction     = "extraction"
	StageRecommendation = "recommendation"
)

// Diagnostic records a non-fatal failure during an analysis.
// Chunk is the zero-based chunk index, or -1 when the failure is not chunk-specific.
type Diagnostic struct {
	Stage   string `json:"stage"`
	Chunk   int    `json:"chunk"`
	Message string `json:"message"`
}

// RecommendationResult is the final output of one analysis
type RecommendationResult struct {
	Notes       string        `json:"notes"` // Serialized SignalProfile
	GiftIdeas   []GiftIdea    `json:"gift_ideas"`
	Profile     SignalProfile `json:"-"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty"`
}
