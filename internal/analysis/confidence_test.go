package analysis_test

import (
	"testing"

	"github.com/eeeeman22/verbatim/internal/analysis"
)

func TestClassifyConfidence_Categories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  analysis.ConfidenceCategory
	}{
		{1.0, analysis.ConfidenceHigh},
		{0.85, analysis.ConfidenceHigh},
		{0.849, analysis.ConfidenceMedium},
		{0.70, analysis.ConfidenceMedium},
		{0.699, analysis.ConfidenceLow},
		{0.0, analysis.ConfidenceLow},
	}
	for _, tt := range tests {
		got := analysis.ClassifyConfidence(tt.score, analysis.DefaultFlagThreshold)
		if got.Category != tt.want {
			t.Errorf("ClassifyConfidence(%v).Category = %q, want %q", tt.score, got.Category, tt.want)
		}
	}
}

func TestClassifyConfidence_ReviewDecision(t *testing.T) {
	t.Parallel()

	for _, threshold := range []float64{0.3, 0.7, 0.9} {
		for _, score := range []float64{0, 0.29, 0.3, 0.69, 0.7, 0.89, 0.9, 1} {
			got := analysis.ClassifyConfidence(score, threshold)
			if want := score < threshold; got.RequiresReview != want {
				t.Errorf("ClassifyConfidence(%v, %v).RequiresReview = %v, want %v",
					score, threshold, got.RequiresReview, want)
			}
		}
	}
}

func TestClassifyConfidence_CutoffsIndependentOfThreshold(t *testing.T) {
	t.Parallel()

	// Raising the flag threshold above the high cutoff must not demote
	// the category.
	got := analysis.ClassifyConfidence(0.9, 0.95)
	if got.Category != analysis.ConfidenceHigh {
		t.Errorf("Category = %q, want high regardless of flag threshold", got.Category)
	}
	if !got.RequiresReview {
		t.Error("RequiresReview = false, want true for score below threshold")
	}
}

func TestClampScore(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want float64 }{
		{-0.1, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.01, 1},
	}
	for _, tt := range tests {
		if got := analysis.ClampScore(tt.in); got != tt.want {
			t.Errorf("ClampScore(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
