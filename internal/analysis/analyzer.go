// Package analysis implements the phonological error analysis engine:
// recognition-confidence classification and the alignment of an expected
// phoneme sequence against a produced one, with each mismatch classified
// into a clinically named error pattern.
//
// The Analyzer is a stateless service constructed once at process start
// and passed by handle to the review layer. Alignment is positional by
// index — a deliberate simplification over edit-distance alignment; the
// strategy is private to Analyze, so a higher-fidelity aligner can be
// substituted behind the same contract.
package analysis

import "github.com/eeeeman22/verbatim/internal/phonology"

// SuggestedError is an unconfirmed error hypothesis produced by the
// analyzer: one aligned phoneme pair and the pattern it matched. It is
// derived data, owned by its word until a clinician confirms it.
type SuggestedError struct {
	// Target is the expected phoneme at the aligned position.
	Target phonology.Phoneme `json:"target"`

	// Produced is the phoneme actually produced, or [phonology.Absent]
	// for a deletion.
	Produced phonology.Phoneme `json:"produced"`

	// Pattern is the phonological process the pair matched.
	Pattern ErrorPattern `json:"pattern"`
}

// rule pairs a match predicate with the pattern it assigns. Rules are
// evaluated in order; the first match wins.
type rule struct {
	pattern ErrorPattern
	matches func(target, produced phonology.Phoneme) bool
}

// substitutionRules is the classification table for aligned pairs where
// both phonemes are present and differ. Order is the clinical priority
// order and must not be reshuffled.
var substitutionRules = []rule{
	{PatternGliding, func(t, p phonology.Phoneme) bool {
		return phonology.IsLiquid(t) && phonology.IsGlide(p)
	}},
	{PatternFrontalLisp, func(t, p phonology.Phoneme) bool {
		return (t == "s" && p == "θ") || (t == "z" && p == "ð")
	}},
	{PatternStopping, func(t, p phonology.Phoneme) bool {
		return phonology.IsFricative(t) && phonology.IsStop(p)
	}},
	{PatternFronting, func(t, p phonology.Phoneme) bool {
		return phonology.IsVelar(t) && phonology.IsAlveolar(p)
	}},
	{PatternBacking, func(t, p phonology.Phoneme) bool {
		return phonology.IsAlveolar(t) && phonology.IsVelar(p)
	}},
	{PatternDeaffrication, func(t, p phonology.Phoneme) bool {
		return phonology.IsAffricate(t) && phonology.IsFricative(p)
	}},
	{PatternAffrication, func(t, p phonology.Phoneme) bool {
		return phonology.IsFricative(t) && phonology.IsAffricate(p)
	}},
	{PatternVoicing, func(t, p phonology.Phoneme) bool {
		return phonology.IsVoiceless(t) && phonology.IsVoiced(p) && phonology.SameManner(t, p)
	}},
	{PatternDevoicing, func(t, p phonology.Phoneme) bool {
		return phonology.IsVoiced(t) && phonology.IsVoiceless(p) && phonology.SameManner(t, p)
	}},
	{PatternNasalization, func(t, p phonology.Phoneme) bool {
		return !phonology.IsNasal(t) && phonology.IsNasal(p)
	}},
	{PatternDenasalization, func(t, p phonology.Phoneme) bool {
		return phonology.IsNasal(t) && !phonology.IsNasal(p)
	}},
}

// Analyzer classifies mismatches between expected and produced phoneme
// sequences. It holds no mutable state and is safe for concurrent use.
type Analyzer struct{}

// NewAnalyzer returns an [Analyzer]. One instance serves the whole
// process.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze parses both phonetic strings and aligns them positionally up to
// the longer length; the shorter sequence contributes an absent phoneme
// at trailing positions. Each aligned pair is classified:
//
//   - equal pairs produce nothing;
//   - differing pairs are matched against the substitution rule table,
//     first match wins, no match means the pair is dropped (the clinician
//     classifies it manually via the custom path);
//   - a deletion is classified as final- or initial-consonant deletion
//     when the missing phoneme is the last or first expected symbol;
//     medial deletions are dropped;
//   - insertions (expected absent, produced present) are dropped.
//
// Results are returned in alignment order. An empty expected or produced
// string yields suggestions only where the rules above still apply; two
// empty strings yield none.
func (a *Analyzer) Analyze(expected, produced string) []SuggestedError {
	exp := phonology.Parse(expected)
	prod := phonology.Parse(produced)

	length := len(exp)
	if len(prod) > length {
		length = len(prod)
	}

	var suggestions []SuggestedError
	for i := 0; i < length; i++ {
		target := phonology.Absent
		if i < len(exp) {
			target = exp[i]
		}
		actual := phonology.Absent
		if i < len(prod) {
			actual = prod[i]
		}

		switch {
		case target == actual:
			// Correct production.

		case target != phonology.Absent && actual != phonology.Absent:
			if pattern, ok := classifySubstitution(target, actual); ok {
				suggestions = append(suggestions, SuggestedError{
					Target:   target,
					Produced: actual,
					Pattern:  pattern,
				})
			}

		case actual == phonology.Absent:
			if pattern, ok := classifyDeletion(i, len(exp)); ok {
				suggestions = append(suggestions, SuggestedError{
					Target:   target,
					Produced: phonology.Absent,
					Pattern:  pattern,
				})
			}

			// Insertions are not classified.
		}
	}
	return suggestions
}

// classifySubstitution runs the rule table over a present-present pair.
func classifySubstitution(target, produced phonology.Phoneme) (ErrorPattern, bool) {
	for _, r := range substitutionRules {
		if r.matches(target, produced) {
			return r.pattern, true
		}
	}
	return "", false
}

// classifyDeletion maps a deletion at position i of an expected sequence
// of length n. Only edge deletions are classified.
func classifyDeletion(i, n int) (ErrorPattern, bool) {
	switch {
	case i == n-1:
		return PatternFinalConsonantDeletion, true
	case i == 0:
		return PatternInitialConsonantDeletion, true
	}
	return "", false
}
