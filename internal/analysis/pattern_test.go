package analysis_test

import (
	"testing"

	"github.com/eeeeman22/verbatim/internal/analysis"
)

func TestErrorPattern_Descriptions(t *testing.T) {
	t.Parallel()

	for _, p := range analysis.Patterns() {
		if !p.IsValid() {
			t.Errorf("Patterns() returned invalid pattern %q", p)
		}
		if p.Description() == "" {
			t.Errorf("pattern %q has no description", p)
		}
	}
}

func TestErrorPattern_Unknown(t *testing.T) {
	t.Parallel()

	var p analysis.ErrorPattern = "spoonerism"
	if p.IsValid() {
		t.Errorf("%q should not be a valid pattern", p)
	}
	if p.Description() != "" {
		t.Errorf("unknown pattern description = %q, want empty", p.Description())
	}
}
