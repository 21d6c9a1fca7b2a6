package session

import (
	"fmt"
	"time"

	"github.com/eeeeman22/verbatim/internal/analysis"
)

// customMarker is the placeholder recorded for the target and produced
// phonemes of a clinician-authored error, where no automatic hypothesis
// exists. Kept stable for consumers of the confirmed-error record shape.
const customMarker = "?"

// wordByID returns a pointer into Words for the word with the given ID.
func (s *Session) wordByID(id string) (*TranscribedWord, error) {
	for i := range s.Words {
		if s.Words[i].ID == id {
			return &s.Words[i], nil
		}
	}
	return nil, fmt.Errorf("word %q: %w", id, ErrNotFound)
}

// Word returns a copy of the word with the given ID, or ErrNotFound.
func (s *Session) Word(id string) (TranscribedWord, error) {
	w, err := s.wordByID(id)
	if err != nil {
		return TranscribedWord{}, err
	}
	return *w, nil
}

// Confirm accepts a system-suggested error for the flagged word wordID:
// it appends a non-custom ConfirmedError to the ledger and transitions
// the word to confirmed. manualPhonetic, when non-empty, is recorded on
// the word and used as the entry's phonetic transcription; otherwise the
// word's produced phonetic is used.
//
// Returns ErrNotFound when the word is not in the session and
// ErrInvalidTransition when the word is not flagged (a confirmed word
// cannot accrue a second entry — the remove path re-flags it first).
func (s *Session) Confirm(wordID string, sug analysis.SuggestedError, manualPhonetic string) (ConfirmedError, error) {
	w, err := s.wordByID(wordID)
	if err != nil {
		return ConfirmedError{}, err
	}
	if err := w.transition(StatusConfirmed); err != nil {
		return ConfirmedError{}, err
	}
	if manualPhonetic != "" {
		w.Manual = manualPhonetic
	}

	entry, err := s.appendEntry(w, string(sug.Target), string(sug.Produced), sug.Pattern, false)
	if err != nil {
		// Roll the word back so the 1:1 invariant holds.
		w.Status = StatusFlagged
		return ConfirmedError{}, err
	}
	return entry, nil
}

// ConfirmCustom records a clinician-authored error for the flagged word
// wordID. No automatic hypothesis exists, so the entry carries "?"
// placeholders for the target and produced phonemes and is marked custom.
func (s *Session) ConfirmCustom(wordID, manualPhonetic string) (ConfirmedError, error) {
	w, err := s.wordByID(wordID)
	if err != nil {
		return ConfirmedError{}, err
	}
	if err := w.transition(StatusConfirmed); err != nil {
		return ConfirmedError{}, err
	}
	if manualPhonetic != "" {
		w.Manual = manualPhonetic
	}

	entry, err := s.appendEntry(w, customMarker, customMarker, analysis.PatternCustom, true)
	if err != nil {
		w.Status = StatusFlagged
		return ConfirmedError{}, err
	}
	return entry, nil
}

// appendEntry builds and appends the ledger entry for w.
func (s *Session) appendEntry(w *TranscribedWord, target, produced string, pattern analysis.ErrorPattern, custom bool) (ConfirmedError, error) {
	id, err := GenerateID()
	if err != nil {
		return ConfirmedError{}, fmt.Errorf("session: generate error id: %w", err)
	}

	phonetic := w.Produced
	if w.Manual != "" {
		phonetic = w.Manual
	}

	entry := ConfirmedError{
		ID:          id,
		WordID:      w.ID,
		WordText:    w.Text,
		StartTime:   w.StartTime,
		Target:      target,
		Produced:    produced,
		Pattern:     pattern,
		Phonetic:    phonetic,
		Expected:    w.Expected,
		IsCustom:    custom,
		ConfirmedAt: time.Now().UTC(),
	}
	s.Errors = append(s.Errors, entry)
	return entry, nil
}

// Remove deletes the ledger entry with the given ID and returns the
// owning word to flagged state. This is the only reverse transition in
// the word lifecycle. Returns ErrNotFound for an unknown entry.
func (s *Session) Remove(errorID string) error {
	idx := -1
	for i := range s.Errors {
		if s.Errors[i].ID == errorID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("error %q: %w", errorID, ErrNotFound)
	}

	w, err := s.wordByID(s.Errors[idx].WordID)
	if err != nil {
		return err
	}
	if err := w.transition(StatusFlagged); err != nil {
		return err
	}

	s.Errors = append(s.Errors[:idx], s.Errors[idx+1:]...)
	return nil
}

// Dismiss declares "no error" for the flagged word wordID and transitions
// it to dismissed. No ledger entry is created and no reverse transition
// is exposed. Returns ErrNotFound for an unknown word and
// ErrInvalidTransition when the word is not flagged.
func (s *Session) Dismiss(wordID string) error {
	w, err := s.wordByID(wordID)
	if err != nil {
		return err
	}
	return w.transition(StatusDismissed)
}

// ErrorPatternCounts returns the number of confirmed errors per pattern.
// Map iteration order is unspecified; consumers sort by count for display.
func (s *Session) ErrorPatternCounts() map[analysis.ErrorPattern]int {
	counts := make(map[analysis.ErrorPattern]int)
	for i := range s.Errors {
		counts[s.Errors[i].Pattern]++
	}
	return counts
}

// StatusCounts returns the number of words per lifecycle status.
func (s *Session) StatusCounts() map[WordStatus]int {
	counts := make(map[WordStatus]int, 4)
	for i := range s.Words {
		counts[s.Words[i].Status]++
	}
	return counts
}

// FlaggedWordCount returns the number of words currently awaiting review.
func (s *Session) FlaggedWordCount() int {
	return s.StatusCounts()[StatusFlagged]
}

// ConfirmedErrorCount returns the number of ledger entries.
func (s *Session) ConfirmedErrorCount() int {
	return len(s.Errors)
}

// TotalWords returns the number of transcribed words.
func (s *Session) TotalWords() int {
	return len(s.Words)
}

// CheckConsistency verifies the confirmed/ledger invariant: every
// confirmed-status word has exactly one ledger entry referencing it, and
// every ledger entry references a confirmed-status word. Used by tests
// and the review manager after snapshot replacement.
func (s *Session) CheckConsistency() error {
	entriesByWord := make(map[string]int, len(s.Errors))
	for i := range s.Errors {
		entriesByWord[s.Errors[i].WordID]++
	}

	for i := range s.Words {
		w := &s.Words[i]
		n := entriesByWord[w.ID]
		if w.Status == StatusConfirmed && n != 1 {
			return fmt.Errorf("session: confirmed word %q has %d ledger entries, want 1", w.ID, n)
		}
		if w.Status != StatusConfirmed && n != 0 {
			return fmt.Errorf("session: %s word %q has %d ledger entries, want 0", w.Status, w.ID, n)
		}
		delete(entriesByWord, w.ID)
	}
	for wordID := range entriesByWord {
		return fmt.Errorf("session: ledger entry references unknown word %q", wordID)
	}
	return nil
}
