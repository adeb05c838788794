package recommend

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/jonathan/gift-recommender/internal/prompts"
	"github.com/jonathan/gift-recommender/internal/types"
)

// NoneDetected stands in for a category with no entries
const NoneDetected = "None detected"

// DefaultBudget is used when the caller gives no budget
const DefaultBudget = "any"

// BuildPrompt renders the recommendation prompt for a merged profile
func BuildPrompt(profile types.SignalProfile, budget string) string {
	budget = strings.TrimSpace(budget)
	if budget == "" {
		budget = DefaultBudget
	}

	template := prompts.MustGet(prompts.RecommendationFile, prompts.RecommendGifts)
	return prompts.Format(template, map[string]string{
		"Budget":     budget,
		"Wishes":     RenderWishes(profile.DirectWishSignals),
		"Problems":   RenderProblems(profile.Problems),
		"Enthusiasm": RenderEnthusiasm(profile.EnthusiasmSignals),
		"Values":     RenderValues(profile.Values),
	})
}

// RenderWishes formats wish signals as bullet lines
func RenderWishes(wishes []types.WishSignal) string {
	return bullets(lo.Map(wishes, func(w types.WishSignal, _ int) string {
		return fmt.Sprintf("- %s: %q (Desire strength: %d/5)", w.Item, w.Quote, w.Strength)
	}))
}

// RenderProblems formats problem statements as bullet lines
func RenderProblems(problems []types.ProblemStatement) string {
	return bullets(lo.Map(problems, func(p types.ProblemStatement, _ int) string {
		return fmt.Sprintf("- %q (Severity: %d/5)", p.Quote, p.Severity)
	}))
}

// RenderEnthusiasm formats enthusiasm markers with their first quote as an example
func RenderEnthusiasm(markers []types.EnthusiasmMarker) string {
	return bullets(lo.Map(markers, func(m types.EnthusiasmMarker, _ int) string {
		return withExample(fmt.Sprintf("- %s (Intensity: %d/5)", m.Topic, m.Intensity), m.Quotes)
	}))
}

// RenderValues formats value indications with their first quote as an example
func RenderValues(values []types.ValueIndication) string {
	return bullets(lo.Map(values, func(v types.ValueIndication, _ int) string {
		return withExample(fmt.Sprintf("- %s (Intensity: %d/5)", v.Value, v.Intensity), v.Quotes)
	}))
}

func withExample(line string, quotes []string) string {
	example, _ := lo.First(quotes)
	return fmt.Sprintf("%s\n  Example: %q", line, example)
}

func bullets(lines []string) string {
	if len(lines) == 0 {
		return NoneDetected
	}
	return strings.Join(lines, "\n")
}
