package session

import "errors"

// ErrNotFound is returned by ledger operations that reference a word or
// confirmed error not present in the session. Referential inconsistency
// is a precondition violation and is never silently ignored.
var ErrNotFound = errors.New("session: word or error not found")

// ErrInvalidTransition is returned when a clinician action would move a
// word through an undefined status transition (e.g. confirming a clean
// word, or re-flagging a dismissed one).
var ErrInvalidTransition = errors.New("session: invalid word status transition")

// ErrInvalidRange is returned when a word's time span is malformed
// (end time earlier than start time).
var ErrInvalidRange = errors.New("session: invalid time range")
