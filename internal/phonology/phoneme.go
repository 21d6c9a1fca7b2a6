// Package phonology provides the IPA phoneme inventory, articulatory
// feature tables, and phonetic notation parsing used by the error
// analysis engine.
//
// Phoneme symbols are opaque strings drawn from a fixed IPA inventory.
// Multi-character symbols (affricates like "tʃ") are single phonemes.
// Feature membership — manner, place, and voicing — is defined by static
// tables; the tables are system constants, not configuration.
package phonology

// Phoneme is a single IPA phoneme symbol. Symbols are opaque: the package
// never inspects individual runes, only set membership.
type Phoneme string

// Absent marks the empty side of an aligned phoneme pair, used when one
// sequence is shorter than the other.
const Absent Phoneme = "∅"

// Manner classifies how airflow is obstructed during articulation.
type Manner string

const (
	MannerStop      Manner = "stop"
	MannerFricative Manner = "fricative"
	MannerAffricate Manner = "affricate"
	MannerNasal     Manner = "nasal"
	MannerLiquid    Manner = "liquid"
	MannerGlide     Manner = "glide"
)

// set is a membership table over phoneme symbols.
type set map[Phoneme]struct{}

func newSet(symbols ...Phoneme) set {
	s := make(set, len(symbols))
	for _, sym := range symbols {
		s[sym] = struct{}{}
	}
	return s
}

func (s set) has(p Phoneme) bool {
	_, ok := s[p]
	return ok
}

// Manner-of-articulation tables (English consonant inventory).
var (
	stops      = newSet("p", "b", "t", "d", "k", "ɡ")
	fricatives = newSet("f", "v", "θ", "ð", "s", "z", "ʃ", "ʒ", "h")
	affricates = newSet("tʃ", "dʒ")
	nasals     = newSet("m", "n", "ŋ")
	liquids    = newSet("ɹ", "l")
	glides     = newSet("w", "j")
)

// Place-of-articulation tables. Only the places the classifier rules
// consult are tabulated.
var (
	velars    = newSet("k", "ɡ", "ŋ")
	alveolars = newSet("t", "d", "n", "s", "z", "l")
)

// Voicing tables.
var (
	voiced    = newSet("b", "d", "ɡ", "v", "ð", "z", "ʒ", "dʒ", "m", "n", "ŋ", "l", "ɹ", "w", "j")
	voiceless = newSet("p", "t", "k", "f", "θ", "s", "ʃ", "h", "tʃ")
)

// MannerOf returns the manner of articulation for p. The second return
// value is false for symbols outside the consonant inventory (vowels and
// unknown symbols carry no manner).
func MannerOf(p Phoneme) (Manner, bool) {
	switch {
	case stops.has(p):
		return MannerStop, true
	case fricatives.has(p):
		return MannerFricative, true
	case affricates.has(p):
		return MannerAffricate, true
	case nasals.has(p):
		return MannerNasal, true
	case liquids.has(p):
		return MannerLiquid, true
	case glides.has(p):
		return MannerGlide, true
	}
	return "", false
}

// IsStop reports whether p is a stop consonant.
func IsStop(p Phoneme) bool { return stops.has(p) }

// IsFricative reports whether p is a fricative.
func IsFricative(p Phoneme) bool { return fricatives.has(p) }

// IsAffricate reports whether p is an affricate.
func IsAffricate(p Phoneme) bool { return affricates.has(p) }

// IsNasal reports whether p is a nasal consonant.
func IsNasal(p Phoneme) bool { return nasals.has(p) }

// IsLiquid reports whether p is a liquid (ɹ or l).
func IsLiquid(p Phoneme) bool { return liquids.has(p) }

// IsGlide reports whether p is a glide (w or j).
func IsGlide(p Phoneme) bool { return glides.has(p) }

// IsVelar reports whether p is articulated at the velum.
func IsVelar(p Phoneme) bool { return velars.has(p) }

// IsAlveolar reports whether p is articulated at the alveolar ridge.
func IsAlveolar(p Phoneme) bool { return alveolars.has(p) }

// IsVoiced reports whether p is produced with vocal fold vibration.
func IsVoiced(p Phoneme) bool { return voiced.has(p) }

// IsVoiceless reports whether p is produced without vocal fold vibration.
func IsVoiceless(p Phoneme) bool { return voiceless.has(p) }

// IsConsonant reports whether p belongs to the tabulated consonant
// inventory.
func IsConsonant(p Phoneme) bool {
	_, ok := MannerOf(p)
	return ok
}

// SameManner reports whether a and b share a manner class among stops,
// fricatives, nasals, and affricates. Liquids and glides are excluded:
// the voicing rules that consult this predicate only apply to obstruents
// and nasals.
func SameManner(a, b Phoneme) bool {
	switch {
	case stops.has(a) && stops.has(b):
		return true
	case fricatives.has(a) && fricatives.has(b):
		return true
	case nasals.has(a) && nasals.has(b):
		return true
	case affricates.has(a) && affricates.has(b):
		return true
	}
	return false
}
