// Package types provides type definitions for structured data used throughout the gift-recommender system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Score bounds shared by strength, severity and intensity fields.
const (
	MinScore = 1
	MaxScore = 5
)

// WishSignal is an explicit mention of something the person wants, needs, or wishes for
type WishSignal struct {
	Item     string `json:"item" jsonschema:"required" jsonschema_description:"The item the person wants"`
	Quote    string `json:"quote" jsonschema:"required" jsonschema_description:"The exact quote expressing desire for something"`
	Date     string `json:"date" jsonschema:"required" jsonschema_description:"Date of the conversation"`
	Strength int    `json:"sentiment_strength" jsonschema:"required" jsonschema_description:"Strength of desire from 1-5, with 5 being strongest"`
}

// ProblemStatement is a complaint or frustration a gift could address
type ProblemStatement struct {
	Quote    string `json:"quote" jsonschema:"required" jsonschema_description:"The exact quote describing a problem or complaint"`
	Date     string `json:"date" jsonschema:"required" jsonschema_description:"Date of the conversation"`
	Severity int    `json:"severity" jsonschema:"required" jsonschema_description:"How severe the problem is, from 1 (annoying) to 5 (critical)"`
}

// EnthusiasmMarker is a topic the person shows strong positive emotion about.
// Topic is the identity key used when merging.
type EnthusiasmMarker struct {
	Topic     string   `json:"topic" jsonschema:"required" jsonschema_description:"The specific topic, activity, or item generating enthusiasm"`
	Quotes    []string `json:"quotes" jsonschema:"required" jsonschema_description:"The quotes showing enthusiasm"`
	Intensity int      `json:"intensity" jsonschema:"required" jsonschema_description:"Intensity of enthusiasm from 1 (slight) to 5 (strong)"`
}

// ValueIndication is a personal value the person expresses.
// Value is the identity key used when merging.
type ValueIndication struct {
	Value     string   `json:"value" jsonschema:"required" jsonschema_description:"Values the person explicitly or implicitly expresses"`
	Quotes    []string `json:"quotes" jsonschema:"required" jsonschema_description:"The quotes showing the value"`
	Intensity int      `json:"intensity" jsonschema:"required" jsonschema_description:"Intensity of value from 1 (slight) to 5 (strong)"`
}

// SignalProfile aggregates every gift-relevant signal found for one person.
// Categories absent from extraction output decode as empty lists.
type SignalProfile struct {
	DirectWishSignals []WishSignal       `json:"direct_wish_signals" jsonschema_description:"Explicit mentions of things the person wants, needs, or wishes for"`
	Problems          []ProblemStatement `json:"problems" jsonschema_description:"Complaints, frustrations, or challenges mentioned that could be addressed by a gift"`
	EnthusiasmSignals []EnthusiasmMarker `json:"enthusiasm_signals" jsonschema_description:"Topics, activities, or items the person shows strong positive emotion about"`
	Values            []ValueIndication  `json:"values" jsonschema_description:"Personal values that could inform thoughtful gift selection"`
}

// SignalCounts summarizes how many entries each category holds
type SignalCounts struct {
	Wishes     int `json:"wishes"`
	Problems   int `json:"problems"`
	Enthusiasm int `json:"enthusiasm"`
	Values     int `json:"values"`
}

// Total returns the number of entries across all categories
func (c SignalCounts) Total() int {
	return c.Wishes + c.Problems + c.Enthusiasm + c.Values
}

// NewSignalProfile returns a profile whose category lists are empty, not nil,
// so it serializes as [] rather than null.
func NewSignalProfile() SignalProfile {
	return SignalProfile{
		DirectWishSignals: []WishSignal{},
		Problems:          []ProblemStatement{},
		EnthusiasmSignals: []EnthusiasmMarker{},
		Values:            []ValueIndication{},
	}
}

// Counts returns per-category entry counts
func (p SignalProfile) Counts() SignalCounts {
	return SignalCounts{
		Wishes:     len(p.DirectWishSignals),
		Problems:   len(p.Problems),
		Enthusiasm: len(p.EnthusiasmSignals),
		Values:     len(p.Values),
	}
}

// IsEmpty reports whether no category holds any entry
func (p SignalProfile) IsEmpty() bool {
	return p.Counts().Total() == 0
}

// Clone returns a deep copy; quote slices are not shared with the receiver.
func (p SignalProfile) Clone() SignalProfile {
	out := NewSignalProfile()
	out.DirectWishSignals = append(out.DirectWishSignals, p.DirectWishSignals...)
	out.Problems = append(out.Problems, p.Problems...)
	for _, e := range p.EnthusiasmSignals {
		e.Quotes = append([]string{}, e.Quotes...)
		out.EnthusiasmSignals = append(out.EnthusiasmSignals, e)
	}
	for _, v := range p.Values {
		v.Quotes = append([]string{}, v.Quotes...)
		out.Values = append(out.Values, v)
	}
	return out
}

// ClampScore forces a model-reported score into [MinScore, MaxScore]
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
