package analysis

// ErrorPattern names a clinically recognised phonological process. The
// enumeration is closed: new patterns are a code change, not data.
type ErrorPattern string

const (
	PatternGliding                  ErrorPattern = "gliding"
	PatternFrontalLisp              ErrorPattern = "frontal_lisp"
	PatternLateralLisp              ErrorPattern = "lateral_lisp"
	PatternStopping                 ErrorPattern = "stopping"
	PatternFronting                 ErrorPattern = "fronting"
	PatternBacking                  ErrorPattern = "backing"
	PatternClusterReduction         ErrorPattern = "cluster_reduction"
	PatternFinalConsonantDeletion   ErrorPattern = "final_consonant_deletion"
	PatternInitialConsonantDeletion ErrorPattern = "initial_consonant_deletion"
	PatternVowelSubstitution        ErrorPattern = "vowel_substitution"
	PatternDeaffrication            ErrorPattern = "deaffrication"
	PatternAffrication              ErrorPattern = "affrication"
	PatternVoicing                  ErrorPattern = "voicing"
	PatternDevoicing                ErrorPattern = "devoicing"
	PatternNasalization             ErrorPattern = "nasalization"
	PatternDenasalization           ErrorPattern = "denasalization"
	PatternCustom                   ErrorPattern = "custom"
)

// patternDescriptions carries the fixed clinical description for each
// pattern. Static data attached to the enumeration, never derived.
var patternDescriptions = map[ErrorPattern]string{
	PatternGliding:                  "A liquid sound (r, l) is replaced with a glide (w, y), as in \"wabbit\" for \"rabbit\".",
	PatternFrontalLisp:              "The tongue protrudes between the teeth on sibilants, producing \"th\" for s or z.",
	PatternLateralLisp:              "Air escapes over the sides of the tongue on sibilants, producing a slushy s or z.",
	PatternStopping:                 "A fricative is replaced with a stop consonant, as in \"tun\" for \"sun\".",
	PatternFronting:                 "A sound made in the back of the mouth is replaced with a front sound, as in \"tat\" for \"cat\".",
	PatternBacking:                  "A sound made at the front of the mouth is replaced with a back sound, as in \"kop\" for \"top\".",
	PatternClusterReduction:         "A consonant cluster is reduced to fewer consonants, as in \"poon\" for \"spoon\".",
	PatternFinalConsonantDeletion:   "The final consonant of a word is omitted, as in \"ca\" for \"cat\".",
	PatternInitialConsonantDeletion: "The initial consonant of a word is omitted, as in \"at\" for \"cat\".",
	PatternVowelSubstitution:        "One vowel is replaced with another vowel.",
	PatternDeaffrication:            "An affricate is replaced with a fricative, as in \"ship\" for \"chip\".",
	PatternAffrication:              "A fricative is replaced with an affricate, as in \"chew\" for \"shoe\".",
	PatternVoicing:                  "A voiceless consonant is produced with voicing, as in \"gup\" for \"cup\".",
	PatternDevoicing:                "A voiced consonant is produced without voicing, as in \"pet\" for \"bed\".",
	PatternNasalization:             "A non-nasal consonant is replaced with a nasal consonant.",
	PatternDenasalization:           "A nasal consonant is replaced with a non-nasal consonant, as in \"bose\" for \"nose\".",
	PatternCustom:                   "Clinician-identified error outside the automatic pattern set.",
}

// Description returns the clinical description for p, or the empty string
// for an unknown pattern.
func (p ErrorPattern) Description() string {
	return patternDescriptions[p]
}

// IsValid reports whether p is a recognised error pattern.
func (p ErrorPattern) IsValid() bool {
	_, ok := patternDescriptions[p]
	return ok
}

// Patterns returns all recognised error patterns in a stable clinical
// ordering, suitable for report layouts and UI pickers.
func Patterns() []ErrorPattern {
	return []ErrorPattern{
		PatternGliding,
		PatternFrontalLisp,
		PatternLateralLisp,
		PatternStopping,
		PatternFronting,
		PatternBacking,
		PatternClusterReduction,
		PatternFinalConsonantDeletion,
		PatternInitialConsonantDeletion,
		PatternVowelSubstitution,
		PatternDeaffrication,
		PatternAffrication,
		PatternVoicing,
		PatternDevoicing,
		PatternNasalization,
		PatternDenasalization,
		PatternCustom,
	}
}
