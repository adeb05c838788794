package recommend

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/jonathan/gift-recommender/internal/llm"
	"github.com/jonathan/gift-recommender/internal/types"
)

var (
	// listKeys are checked, in order, for a wrapped list of ideas
	listKeys = []string{"recommendations", "gift_ideas", "gifts", "ideas"}
	// nameKeys mark an object as idea-shaped
	nameKeys = []string{"name", "gift_name", "title"}
)

// ParseIdeas recovers gift ideas from model output. It never fails:
// text with no recoverable ideas yields an empty list.
//
// The whole text is parsed first and searched for a list of ideas. If that
// finds nothing, every JSON object embedded in the text is tried on its own.
func ParseIdeas(text string) []types.GiftIdea {
	trimmed := strings.TrimSpace(text)

	for _, candidate := range lo.Uniq([]string{trimmed, llm.CleanJSONBlock(trimmed)}) {
		var root any
		if err := json.Unmarshal([]byte(candidate), &root); err != nil {
			continue
		}
		if ideas, ok := ideasFromValue(root); ok {
			return ideas
		}
		break
	}

	return scanObjects(trimmed)
}

// ideasFromValue looks for a list of ideas in a decoded JSON value
func ideasFromValue(root any) ([]types.GiftIdea, bool) {
	switch v := root.(type) {
	case map[string]any:
		for _, key := range listKeys {
			if list, ok := v[key].([]any); ok && firstIsIdea(list) {
				return toIdeas(list), true
			}
		}

		keys := lo.Keys(v)
		sort.Strings(keys)
		for _, key := range keys {
			if list, ok := v[key].([]any); ok && firstIsIdea(list) {
				return toIdeas(list), true
			}
		}
	case []any:
		ideas := toIdeas(v)
		return ideas, len(ideas) > 0
	}
	return nil, false
}

// scanObjects parses each JSON object in text independently.
// Objects nested inside one already used are skipped.
func scanObjects(text string) []types.GiftIdea {
	ideas := []types.GiftIdea{}
	var used []llm.JSONSpan

	for _, span := range llm.FindJSONObjects(text) {
		if lo.ContainsBy(used, func(u llm.JSONSpan) bool {
			return span.Start >= u.Start && span.End <= u.End
		}) {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal([]byte(span.Text), &obj); err != nil {
			continue
		}

		if nested, ok := ideasFromValue(obj); ok {
			ideas = append(ideas, nested...)
			used = append(used, span)
			continue
		}
		if isIdea(obj) {
			if idea, ok := toIdea(obj); ok {
				ideas = append(ideas, idea)
			}
			used = append(used, span)
		}
	}
	return ideas
}

func firstIsIdea(list []any) bool {
	if len(list) == 0 {
		return false
	}
	obj, ok := list[0].(map[string]any)
	return ok && isIdea(obj)
}

func isIdea(obj map[string]any) bool {
	return lo.SomeBy(nameKeys, func(key string) bool {
		_, ok := obj[key]
		return ok
	})
}

func toIdeas(list []any) []types.GiftIdea {
	ideas := make([]types.GiftIdea, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if idea, ok := toIdea(obj); ok {
			ideas = append(ideas, idea)
		}
	}
	return ideas
}

// toIdea maps a decoded object to a GiftIdea. Objects with neither a name
// nor a description are rejected.
func toIdea(obj map[string]any) (types.GiftIdea, bool) {
	idea := types.GiftIdea{
		Name:            firstString(obj, nameKeys...),
		Link:            firstString(obj, "link", "url"),
		Description:     firstString(obj, "description"),
		Reasoning:       firstString(obj, "reasoning", "reason"),
		MatchScore:      matchScore(obj["match_score"]),
		Personalization: firstString(obj, "personalization"),
	}
	if idea.Name == "" && idea.Description == "" {
		return types.GiftIdea{}, false
	}
	return idea, true
}

func firstString(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// matchScore accepts numbers and numeric strings; 0 means absent
func matchScore(v any) int {
	var f float64
	switch s := v.(type) {
	case float64:
		f = s
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	return types.ClampScore(int(math.Round(f)))
}
