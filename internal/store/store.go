// Package store persists completed review sessions. Sessions are stored
// as opaque snapshots: the store never mutates words or the error ledger,
// it only saves and restores whole [session.Session] values.
//
// Two backends are provided: [PostgresStore] for shared deployments and
// [FileStore] for single-clinician installs without a database.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/eeeeman22/verbatim/internal/session"
)

// ErrNotFound is returned when no session with the requested ID exists.
var ErrNotFound = errors.New("store: session not found")

// Summary is the listing view of a stored session, cheap to produce
// without loading the full word list.
type Summary struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Date        time.Time `json:"date"`

	// WordCount and ErrorCount summarise the stored snapshot.
	WordCount  int `json:"word_count"`
	ErrorCount int `json:"error_count"`
}

// Store is the persistence contract for review sessions.
type Store interface {
	// Save writes the session snapshot, replacing any existing snapshot
	// with the same ID.
	Save(ctx context.Context, s *session.Session) error

	// Load returns the session with the given ID, or ErrNotFound.
	Load(ctx context.Context, id string) (*session.Session, error)

	// List returns summaries of all stored sessions, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes the session with the given ID, or returns
	// ErrNotFound when it does not exist.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
