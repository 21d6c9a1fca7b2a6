// Package dictionary provides the pronunciation lookup service: an
// orthographic word maps to its expected IPA transcription. The lexicon
// is loaded once from a YAML file and the Dictionary is read-only after
// construction, so it is safe to share one instance across the process.
//
// When an exact lookup misses, Suggest offers the phonetically nearest
// headword using Double Metaphone candidate filtering ranked by
// Jaro-Winkler similarity, so the review UI can propose an entry instead
// of surfacing an error.
package dictionary

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultSuggestThreshold is the minimum Jaro-Winkler score for a fuzzy
// headword suggestion.
const defaultSuggestThreshold = 0.80

// Option is a functional option for configuring a [Dictionary].
type Option func(*Dictionary)

// WithSuggestThreshold sets the minimum Jaro-Winkler score required for
// [Dictionary.Suggest] to offer a headword. Default: 0.80.
func WithSuggestThreshold(threshold float64) Option {
	return func(d *Dictionary) {
		d.suggestThreshold = threshold
	}
}

// Dictionary is a read-only pronunciation lexicon. All methods are safe
// for concurrent use after construction.
type Dictionary struct {
	entries          map[string]string
	headwords        []string
	codes            map[string][]string // metaphone code → headwords
	suggestThreshold float64
}

// New builds a Dictionary from a word → phonetic map. Headwords are
// matched case-insensitively.
func New(entries map[string]string, opts ...Option) *Dictionary {
	d := &Dictionary{
		entries:          make(map[string]string, len(entries)),
		codes:            make(map[string][]string, len(entries)),
		suggestThreshold: defaultSuggestThreshold,
	}
	for _, o := range opts {
		o(d)
	}

	for word, phonetic := range entries {
		key := strings.ToLower(strings.TrimSpace(word))
		if key == "" {
			continue
		}
		d.entries[key] = phonetic
		d.headwords = append(d.headwords, key)
	}
	// Stable iteration order for Suggest tie-breaking.
	sort.Strings(d.headwords)
	d.indexCodes()
	return d
}

// Load reads a YAML lexicon file mapping words to slash-delimited IPA
// transcriptions and returns the Dictionary.
func Load(path string, opts ...Option) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dictionary: open %q: %w", path, err)
	}
	defer f.Close()

	d, err := LoadFromReader(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("dictionary: parse %q: %w", path, err)
	}
	return d, nil
}

// LoadFromReader decodes a YAML lexicon from r. Useful in tests where
// lexicons are constructed from string literals.
func LoadFromReader(r io.Reader, opts ...Option) (*Dictionary, error) {
	var entries map[string]string
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("dictionary: decode yaml: %w", err)
	}
	return New(entries, opts...), nil
}

// Lookup returns the expected phonetic transcription for word. The
// second return value reports whether the word is in the lexicon.
func (d *Dictionary) Lookup(word string) (string, bool) {
	phonetic, ok := d.entries[strings.ToLower(strings.TrimSpace(word))]
	return phonetic, ok
}

// Len returns the number of lexicon entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}
