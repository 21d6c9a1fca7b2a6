package dictionary

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// Suggestion is a fuzzy headword match offered when an exact lookup
// misses.
type Suggestion struct {
	// Word is the suggested lexicon headword.
	Word string

	// Phonetic is the headword's transcription.
	Phonetic string

	// Score is the Jaro-Winkler similarity between the query and the
	// headword, in (0, 1].
	Score float64
}

// indexCodes builds the Double Metaphone code index over the headwords.
func (d *Dictionary) indexCodes() {
	for _, hw := range d.headwords {
		primary, secondary := matchr.DoubleMetaphone(hw)
		if primary != "" {
			d.codes[primary] = append(d.codes[primary], hw)
		}
		if secondary != "" && secondary != primary {
			d.codes[secondary] = append(d.codes[secondary], hw)
		}
	}
}

// Suggest returns the phonetically nearest headword for word, provided
// its Jaro-Winkler similarity reaches the suggestion threshold.
//
// Candidates are collected by Double Metaphone code overlap and ranked by
// Jaro-Winkler on the lowercased strings. When no candidate shares a
// code, all headwords are ranked directly — the threshold keeps wild
// guesses out. The second return value is false when nothing qualifies.
func (d *Dictionary) Suggest(word string) (Suggestion, bool) {
	query := strings.ToLower(strings.TrimSpace(word))
	if query == "" || len(d.headwords) == 0 {
		return Suggestion{}, false
	}

	candidates := d.phoneticCandidates(query)
	if len(candidates) == 0 {
		candidates = d.headwords
	}

	var best Suggestion
	for _, hw := range candidates {
		score := matchr.JaroWinkler(query, hw, false)
		if score > best.Score {
			best = Suggestion{Word: hw, Score: score}
		}
	}

	if best.Score < d.suggestThreshold {
		return Suggestion{}, false
	}
	best.Phonetic = d.entries[best.Word]
	return best, true
}

// phoneticCandidates returns headwords sharing a Double Metaphone code
// with query.
func (d *Dictionary) phoneticCandidates(query string) []string {
	primary, secondary := matchr.DoubleMetaphone(query)

	seen := make(map[string]struct{})
	var out []string
	for _, code := range []string{primary, secondary} {
		if code == "" {
			continue
		}
		for _, hw := range d.codes[code] {
			if _, dup := seen[hw]; dup {
				continue
			}
			seen[hw] = struct{}{}
			out = append(out, hw)
		}
	}
	return out
}
