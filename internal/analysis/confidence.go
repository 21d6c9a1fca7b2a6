package analysis

// ConfidenceCategory is the discrete recognition-confidence band for a
// transcribed word. Categories are ordered: low < medium < high.
type ConfidenceCategory string

const (
	ConfidenceLow    ConfidenceCategory = "low"
	ConfidenceMedium ConfidenceCategory = "medium"
	ConfidenceHigh   ConfidenceCategory = "high"
)

// Category cutoffs. These are fixed system constants, independent of the
// configurable flagging threshold.
const (
	highConfidenceCutoff   = 0.85
	mediumConfidenceCutoff = 0.70
)

// DefaultFlagThreshold is the review-flagging threshold used when the
// configuration does not override it.
const DefaultFlagThreshold = 0.70

// Confidence is the result of classifying a recognition-confidence score.
type Confidence struct {
	// Category is the fixed-cutoff band the score falls into.
	Category ConfidenceCategory

	// RequiresReview is true when the score is below the flagging
	// threshold and the word should enter the review workflow.
	RequiresReview bool
}

// ClassifyConfidence maps score to a category using the fixed cutoffs
// (high ≥ 0.85, medium ≥ 0.70, low otherwise) and decides flagging
// against flagThreshold: RequiresReview holds exactly when
// score < flagThreshold.
//
// score is assumed to be in [0, 1]; callers clamp out-of-range provider
// values before classification. The flagging decision is made once, at
// word creation — a later threshold change never reclassifies existing
// words.
func ClassifyConfidence(score, flagThreshold float64) Confidence {
	var cat ConfidenceCategory
	switch {
	case score >= highConfidenceCutoff:
		cat = ConfidenceHigh
	case score >= mediumConfidenceCutoff:
		cat = ConfidenceMedium
	default:
		cat = ConfidenceLow
	}
	return Confidence{
		Category:       cat,
		RequiresReview: score < flagThreshold,
	}
}

// ClampScore confines a provider-reported confidence score to [0, 1].
// ASR services occasionally report values a hair outside the range.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
