package session_test

import (
	"errors"
	"testing"
	"time"

	"github.com/eeeeman22/verbatim/internal/analysis"
	"github.com/eeeeman22/verbatim/internal/session"
)

func TestNewWord_FlaggingDecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		confidence float64
		threshold  float64
		wantStatus session.WordStatus
		wantCat    analysis.ConfidenceCategory
	}{
		{"high confidence clean", 0.93, 0.7, session.StatusClean, analysis.ConfidenceHigh},
		{"medium confidence clean", 0.75, 0.7, session.StatusClean, analysis.ConfidenceMedium},
		{"at threshold clean", 0.7, 0.7, session.StatusClean, analysis.ConfidenceMedium},
		{"below threshold flagged", 0.69, 0.7, session.StatusFlagged, analysis.ConfidenceLow},
		{"high score flagged by strict threshold", 0.88, 0.9, session.StatusFlagged, analysis.ConfidenceHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w, err := session.NewWord("w-1", "cat", tt.confidence, 0, time.Second, tt.threshold)
			if err != nil {
				t.Fatalf("NewWord: %v", err)
			}
			if w.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", w.Status, tt.wantStatus)
			}
			if w.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", w.Category, tt.wantCat)
			}
		})
	}
}

func TestNewWord_InvalidRange(t *testing.T) {
	t.Parallel()

	_, err := session.NewWord("w-1", "cat", 0.5, time.Second, 0, 0.7)
	if !errors.Is(err, session.ErrInvalidRange) {
		t.Errorf("NewWord(end < start) error = %v, want ErrInvalidRange", err)
	}
}

func TestWord_Duration(t *testing.T) {
	t.Parallel()

	w, err := session.NewWord("w-1", "cat", 0.5, 300*time.Millisecond, 800*time.Millisecond, 0.7)
	if err != nil {
		t.Fatalf("NewWord: %v", err)
	}
	if got := w.Duration(); got != 500*time.Millisecond {
		t.Errorf("Duration = %v, want 500ms", got)
	}
}

func TestWord_Selectable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status session.WordStatus
		want   bool
	}{
		{session.StatusClean, false},
		{session.StatusFlagged, true},
		{session.StatusConfirmed, true},
		{session.StatusDismissed, false},
	}
	for _, tt := range tests {
		w := session.TranscribedWord{Status: tt.status}
		if got := w.Selectable(); got != tt.want {
			t.Errorf("Selectable(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestWordStatus_IsValid(t *testing.T) {
	t.Parallel()

	for _, s := range []session.WordStatus{
		session.StatusClean, session.StatusFlagged, session.StatusConfirmed, session.StatusDismissed,
	} {
		if !s.IsValid() {
			t.Errorf("IsValid(%q) = false, want true", s)
		}
	}
	if session.WordStatus("pending").IsValid() {
		t.Error("IsValid(\"pending\") = true, want false")
	}
}
