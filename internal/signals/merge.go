// Package signals merges per-chunk signal profiles into one deduplicated profile.
package signals

import (
	"github.com/jonathan/gift-recommender/internal/types"
)

// Accumulator folds signal profiles together.
//
// Wishes and problems are deduplicated on their exact quote. Enthusiasm
// markers and values are keyed on topic/value: a repeated key gains the
// quotes it did not have yet and keeps the higher intensity. All lists
// keep first-seen order.
//
// An Accumulator is not safe for concurrent use.
type Accumulator struct {
	mode    Mode
	profile types.SignalProfile

	wishQuotes    map[string]struct{}
	problemQuotes map[string]struct{}

	enthusiasmIndex  map[string]int
	enthusiasmQuotes []map[string]struct{}
	valueIndex       map[string]int
	valueQuotes      []map[string]struct{}
}

// NewAccumulator returns an empty accumulator
func NewAccumulator(mode Mode) *Accumulator {
	if mode == "" {
		mode = ModeFull
	}
	return &Accumulator{
		mode:            mode,
		profile:         types.NewSignalProfile(),
		wishQuotes:      make(map[string]struct{}),
		problemQuotes:   make(map[string]struct{}),
		enthusiasmIndex: make(map[string]int),
		valueIndex:      make(map[string]int),
	}
}

// Mode returns the category mode the accumulator was created with
func (a *Accumulator) Mode() Mode {
	return a.mode
}

// Merge folds addition into the accumulator and returns it for chaining.
// The addition is not modified or retained.
func (a *Accumulator) Merge(addition types.SignalProfile) *Accumulator {
	for _, w := range addition.DirectWishSignals {
		if _, seen := a.wishQuotes[w.Quote]; seen {
			continue
		}
		a.wishQuotes[w.Quote] = struct{}{}
		a.profile.DirectWishSignals = append(a.profile.DirectWishSignals, w)
	}

	if !a.mode.tracksAll() {
		return a
	}

	for _, p := range addition.Problems {
		if _, seen := a.problemQuotes[p.Quote]; seen {
			continue
		}
		a.problemQuotes[p.Quote] = struct{}{}
		a.profile.Problems = append(a.profile.Problems, p)
	}

	for _, m := range addition.EnthusiasmSignals {
		a.mergeEnthusiasm(m)
	}
	for _, v := range addition.Values {
		a.mergeValue(v)
	}
	return a
}

func (a *Accumulator) mergeEnthusiasm(m types.EnthusiasmMarker) {
	if i, ok := a.enthusiasmIndex[m.Topic]; ok {
		existing := &a.profile.EnthusiasmSignals[i]
		existing.Quotes = appendNewQuotes(existing.Quotes, a.enthusiasmQuotes[i], m.Quotes)
		existing.Intensity = max(existing.Intensity, m.Intensity)
		return
	}

	seen := make(map[string]struct{}, len(m.Quotes))
	m.Quotes = appendNewQuotes(make([]string, 0, len(m.Quotes)), seen, m.Quotes)
	a.enthusiasmIndex[m.Topic] = len(a.profile.EnthusiasmSignals)
	a.enthusiasmQuotes = append(a.enthusiasmQuotes, seen)
	a.profile.EnthusiasmSignals = append(a.profile.EnthusiasmSignals, m)
}

func (a *Accumulator) mergeValue(v types.ValueIndication) {
	if i, ok := a.valueIndex[v.Value]; ok {
		existing := &a.profile.Values[i]
		existing.Quotes = appendNewQuotes(existing.Quotes, a.valueQuotes[i], v.Quotes)
		existing.Intensity = max(existing.Intensity, v.Intensity)
		return
	}

	seen := make(map[string]struct{}, len(v.Quotes))
	v.Quotes = appendNewQuotes(make([]string, 0, len(v.Quotes)), seen, v.Quotes)
	a.valueIndex[v.Value] = len(a.profile.Values)
	a.valueQuotes = append(a.valueQuotes, seen)
	a.profile.Values = append(a.profile.Values, v)
}

// appendNewQuotes appends each quote not yet in seen, recording it there
func appendNewQuotes(dst []string, seen map[string]struct{}, quotes []string) []string {
	for _, q := range quotes {
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		dst = append(dst, q)
	}
	return dst
}

// Profile returns a deep copy of the merged profile
func (a *Accumulator) Profile() types.SignalProfile {
	return a.profile.Clone()
}

// Counts returns per-category entry counts of the merged profile
func (a *Accumulator) Counts() types.SignalCounts {
	return a.profile.Counts()
}

// Merge folds addition into acc and returns the merged profile.
// Neither argument is modified.
func Merge(acc, addition types.SignalProfile) types.SignalProfile {
	return NewAccumulator(ModeFull).Merge(acc).Merge(addition).Profile()
}
