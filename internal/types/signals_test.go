package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalProfile_JSONUnmarshaling(t *testing.T) {
	jsonInput := `{
		"direct_wish_signals": [
			{"item": "climbing shoes", "quote": "I really want to get into rock climbing", "date": "2025-03-01", "sentiment_strength": 4}
		],
		"enthusiasm_signals": [
			{"topic": "Thai food", "quotes": ["The food was amazing!"], "intensity": 5}
		]
	}`

	var profile SignalProfile
	err := json.Unmarshal([]byte(jsonInput), &profile)
	require.NoError(t, err)

	require.Len(t, profile.DirectWishSignals, 1)
	assert.Equal(t, "climbing shoes", profile.DirectWishSignals[0].Item)
	assert.Equal(t, 4, profile.DirectWishSignals[0].Strength)
	require.Len(t, profile.EnthusiasmSignals, 1)
	assert.Equal(t, []string{"The food was amazing!"}, profile.EnthusiasmSignals[0].Quotes)
	assert.Empty(t, profile.Problems)
	assert.Empty(t, profile.Values)
}

func TestNewSignalProfile_MarshalsEmptyLists(t *testing.T) {
	jsonBytes, err := json.Marshal(NewSignalProfile())
	require.NoError(t, err)

	assert.Contains(t, string(jsonBytes), `"direct_wish_signals":[]`)
	assert.Contains(t, string(jsonBytes), `"problems":[]`)
	assert.Contains(t, string(jsonBytes), `"enthusiasm_signals":[]`)
	assert.Contains(t, string(jsonBytes), `"values":[]`)
}

func TestSignalProfile_CountsAndIsEmpty(t *testing.T) {
	profile := NewSignalProfile()
	assert.True(t, profile.IsEmpty())

	profile.Problems = append(profile.Problems, ProblemStatement{Quote: "My hands are so dry"})
	profile.Values = append(profile.Values, ValueIndication{Value: "sustainability"})

	counts := profile.Counts()
	assert.Equal(t, 0, counts.Wishes)
	assert.Equal(t, 1, counts.Problems)
	assert.Equal(t, 1, counts.Values)
	assert.Equal(t, 2, counts.Total())
	assert.False(t, profile.IsEmpty())
}

func TestSignalProfile_CloneIsDeep(t *testing.T) {
	original := SignalProfile{
		EnthusiasmSignals: []EnthusiasmMarker{{Topic: "ceramics", Quotes: []string{"I love these"}, Intensity: 3}},
		Values:            []ValueIndication{{Value: "craft", Quotes: []string{"handmade"}, Intensity: 2}},
	}

	clone := original.Clone()
	clone.EnthusiasmSignals[0].Quotes[0] = "changed"
	clone.Values[0].Quotes = append(clone.Values[0].Quotes, "more")

	assert.Equal(t, "I love these", original.EnthusiasmSignals[0].Quotes[0])
	assert.Len(t, original.Values[0].Quotes, 1)
	assert.NotNil(t, clone.DirectWishSignals)
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"below range", 0, 1},
		{"negative", -3, 1},
		{"lower bound", 1, 1},
		{"in range", 3, 3},
		{"upper bound", 5, 5},
		{"above range", 9, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClampScore(tt.input))
		})
	}
}
