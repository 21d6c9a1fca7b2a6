// Package session holds the review data model: the transcribed word list
// with its lifecycle state machine and the ledger of clinician-confirmed
// phonological errors.
//
// A Session is a plain mutable value with no internal locking. All
// mutation is serialized by a single owner (see internal/review); the
// ledger operations guarantee that after every mutation the set of
// confirmed-status words and the confirmed-error entries remain in 1:1
// correspondence.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/eeeeman22/verbatim/internal/analysis"
)

// WordStatus is the lifecycle state of a transcribed word.
type WordStatus string

const (
	// StatusClean is the initial state: recognition confidence was at or
	// above the flagging threshold and the word needs no review.
	StatusClean WordStatus = "clean"

	// StatusFlagged marks a word for clinician review. Assigned once, at
	// word creation, when confidence falls below the flag threshold.
	StatusFlagged WordStatus = "flagged"

	// StatusConfirmed means the clinician accepted an error for this word;
	// exactly one ledger entry references it.
	StatusConfirmed WordStatus = "confirmed"

	// StatusDismissed means the clinician declared "no error". Terminal.
	StatusDismissed WordStatus = "dismissed"
)

// IsValid reports whether s is a recognised word status.
func (s WordStatus) IsValid() bool {
	switch s {
	case StatusClean, StatusFlagged, StatusConfirmed, StatusDismissed:
		return true
	}
	return false
}

// TranscribedWord is a single word from the recognition feed together
// with its review state. Phonetic fields use the slash-delimited notation
// consumed by phonology.Parse; an empty string means absent.
type TranscribedWord struct {
	// ID uniquely identifies the word within its session.
	ID string `json:"id"`

	// Text is the orthographic form the recognizer produced.
	Text string `json:"text"`

	// Confidence is the recognition confidence score in [0, 1].
	Confidence float64 `json:"confidence"`

	// Category is the fixed-cutoff confidence band, classified once at
	// word creation.
	Category analysis.ConfidenceCategory `json:"category"`

	// StartTime and EndTime bound the word in the recording.
	// StartTime ≤ EndTime always holds for words built via NewWord.
	StartTime time.Duration `json:"start_time"`
	EndTime   time.Duration `json:"end_time"`

	// Status is the word's lifecycle state.
	Status WordStatus `json:"status"`

	// Expected is the dictionary pronunciation, when the lookup resolved.
	Expected string `json:"expected,omitempty"`

	// Produced is the automatically obtained production, when available.
	Produced string `json:"produced,omitempty"`

	// Manual is the clinician-entered phonetic transcription, when supplied.
	Manual string `json:"manual,omitempty"`

	// Suggestions holds the analyzer's error hypotheses. Populated only
	// for words that were flagged for review.
	Suggestions []analysis.SuggestedError `json:"suggestions,omitempty"`
}

// Duration returns the time the word spans in the recording.
func (w *TranscribedWord) Duration() time.Duration {
	return w.EndTime - w.StartTime
}

// Selectable reports whether the word may be opened for detail review.
// Only flagged and confirmed words participate in the review workflow;
// clean and dismissed words are display-only.
func (w *TranscribedWord) Selectable() bool {
	return w.Status == StatusFlagged || w.Status == StatusConfirmed
}

// NewWord builds a TranscribedWord from a recognition result, classifying
// its confidence against flagThreshold. The flagging decision here is
// final: a later threshold change never reclassifies an existing word.
// Returns ErrInvalidRange when end precedes start.
func NewWord(id, text string, confidence float64, start, end time.Duration, flagThreshold float64) (TranscribedWord, error) {
	if end < start {
		return TranscribedWord{}, ErrInvalidRange
	}
	c := analysis.ClassifyConfidence(confidence, flagThreshold)
	status := StatusClean
	if c.RequiresReview {
		status = StatusFlagged
	}
	return TranscribedWord{
		ID:         id,
		Text:       text,
		Confidence: confidence,
		Category:   c.Category,
		StartTime:  start,
		EndTime:    end,
		Status:     status,
	}, nil
}

// ConfirmedError is the durable record of a clinician-accepted error.
type ConfirmedError struct {
	// ID uniquely identifies the ledger entry.
	ID string `json:"id"`

	// WordID and WordText reference the owning word.
	WordID   string `json:"word_id"`
	WordText string `json:"word_text"`

	// StartTime is the owning word's position in the recording.
	StartTime time.Duration `json:"start_time"`

	// Target and Produced are the phonemes of the confirmed mismatch.
	// The custom path records "?" placeholders for both.
	Target   string `json:"target"`
	Produced string `json:"produced"`

	// Pattern is the confirmed phonological process.
	Pattern analysis.ErrorPattern `json:"pattern"`

	// Phonetic is the production transcription: the clinician's manual
	// entry when supplied, otherwise the word's produced phonetic.
	Phonetic string `json:"phonetic,omitempty"`

	// Expected is the word's expected (dictionary) phonetic.
	Expected string `json:"expected,omitempty"`

	// IsCustom distinguishes clinician-authored errors from confirmed
	// system suggestions.
	IsCustom bool `json:"is_custom"`

	// ConfirmedAt is when the clinician confirmed the error.
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// Session aggregates one recording/review cycle for one student. It is
// mutated only through the ledger operations and the review manager's
// snapshot replacement; persistence treats it as an opaque snapshot.
type Session struct {
	// ID uniquely identifies the session.
	ID string `json:"id"`

	// StudentID and StudentName identify the student being reviewed.
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`

	// Date is when the session took place.
	Date time.Time `json:"date"`

	// Duration is the total recording length.
	Duration time.Duration `json:"duration"`

	// Words is the full ordered transcription.
	Words []TranscribedWord `json:"words"`

	// Errors is the confirmed-error ledger.
	Errors []ConfirmedError `json:"errors"`

	// Notes holds free-form clinical notes.
	Notes string `json:"notes,omitempty"`

	// AudioPath optionally references the session recording.
	AudioPath string `json:"audio_path,omitempty"`
}

// New creates an empty session for a student, stamped with the current
// time.
func New(id, studentID, studentName string) *Session {
	return &Session{
		ID:          id,
		StudentID:   studentID,
		StudentName: studentName,
		Date:        time.Now().UTC(),
		Words:       []TranscribedWord{},
		Errors:      []ConfirmedError{},
	}
}

// GenerateID produces a random 16-byte hex identifier for sessions and
// ledger entries.
func GenerateID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
