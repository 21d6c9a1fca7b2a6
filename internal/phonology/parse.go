package phonology

import "strings"

// Parse tokenizes an IPA-bracketed phonetic string into an ordered phoneme
// sequence. Leading/trailing slash delimiters and surrounding whitespace
// are stripped; the remainder is split on whitespace. An empty or
// delimiter-only input yields an empty sequence.
//
// No normalization is applied to the symbols themselves: case, stress
// marks, and length diacritics pass through untouched, and a diacritic
// written without a separating space stays fused to its neighbour.
// Symbol order is phonetically meaningful and is preserved.
func Parse(text string) []Phoneme {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "/")
	text = strings.TrimSpace(text)
	if text == "" {
		return []Phoneme{}
	}

	fields := strings.Fields(text)
	symbols := make([]Phoneme, len(fields))
	for i, f := range fields {
		symbols[i] = Phoneme(f)
	}
	return symbols
}

// Format renders a phoneme sequence for display, space-separated inside
// slash delimiters. The inverse of [Parse] for canonical input.
func Format(symbols []Phoneme) string {
	if len(symbols) == 0 {
		return ""
	}
	parts := make([]string, len(symbols))
	for i, s := range symbols {
		parts[i] = string(s)
	}
	return "/" + strings.Join(parts, " ") + "/"
}
