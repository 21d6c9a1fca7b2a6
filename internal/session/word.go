package session

// legalTransitions enumerates the clinician-driven status transitions.
// The clean → flagged transition is not listed: flagging happens exactly
// once, inside NewWord, and is never re-applied afterwards.
var legalTransitions = map[WordStatus][]WordStatus{
	StatusFlagged:   {StatusConfirmed, StatusDismissed},
	StatusConfirmed: {StatusFlagged},
}

// canTransition reports whether moving from from to to is defined.
func canTransition(from, to WordStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transition moves the word to status to, or returns ErrInvalidTransition
// when the state machine does not define that edge.
func (w *TranscribedWord) transition(to WordStatus) error {
	if !canTransition(w.Status, to) {
		return ErrInvalidTransition
	}
	w.Status = to
	return nil
}
