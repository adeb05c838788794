package extraction

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/jonathan/gift-recommender/internal/types"
)

// normalize repairs a decoded profile: scores are clamped into range,
// entries with an empty identity are dropped and quote lists are deduplicated.
func normalize(p types.SignalProfile) types.SignalProfile {
	out := types.NewSignalProfile()

	for _, w := range p.DirectWishSignals {
		w.Item = strings.TrimSpace(w.Item)
		w.Quote = strings.TrimSpace(w.Quote)
		w.Date = strings.TrimSpace(w.Date)
		if w.Quote == "" {
			continue
		}
		w.Strength = types.ClampScore(w.Strength)
		out.DirectWishSignals = append(out.DirectWishSignals, w)
	}

	for _, pr := range p.Problems {
		pr.Quote = strings.TrimSpace(pr.Quote)
		pr.Date = strings.TrimSpace(pr.Date)
		if pr.Quote == "" {
			continue
		}
		pr.Severity = types.ClampScore(pr.Severity)
		out.Problems = append(out.Problems, pr)
	}

	for _, m := range p.EnthusiasmSignals {
		m.Topic = strings.TrimSpace(m.Topic)
		if m.Topic == "" {
			continue
		}
		m.Quotes = normalizeQuotes(m.Quotes)
		m.Intensity = types.ClampScore(m.Intensity)
		out.EnthusiasmSignals = append(out.EnthusiasmSignals, m)
	}

	for _, v := range p.Values {
		v.Value = strings.TrimSpace(v.Value)
		if v.Value == "" {
			continue
		}
		v.Quotes = normalizeQuotes(v.Quotes)
		v.Intensity = types.ClampScore(v.Intensity)
		out.Values = append(out.Values, v)
	}

	return out
}

func normalizeQuotes(quotes []string) []string {
	trimmed := lo.Map(quotes, func(q string, _ int) string { return strings.TrimSpace(q) })
	return append([]string{}, lo.Uniq(lo.Compact(trimmed))...)
}

var (
	categoryKeys = []string{"direct_wish_signals", "problems", "enthusiasm_signals", "values"}
	scoreKeys    = []string{"sentiment_strength", "severity", "intensity"}
)

// coerceScores rewrites score fields holding "4", " 4 " or 4.0 as 4.
// It reports false when candidate is not a JSON object or nothing changed.
func coerceScores(candidate string) (string, bool) {
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()
	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return "", false
	}

	changed := false
	for _, category := range categoryKeys {
		entries, ok := root[category].([]any)
		if !ok {
			continue
		}
		for _, entry := range entries {
			fields, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			for _, key := range scoreKeys {
				if n, ok := integralScore(fields[key]); ok {
					fields[key] = n
					changed = true
				}
			}
		}
	}
	if !changed {
		return "", false
	}

	b, err := json.Marshal(root)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// integralScore converts a string or non-integer JSON number holding a whole
// value. Values that already decode as int, and fractions, are left alone.
func integralScore(raw any) (int64, bool) {
	var text string
	switch v := raw.(type) {
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return 0, false
		}
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	default:
		return 0, false
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}
